package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/model"
)

var builtinTemplateTypes = map[string]string{
	model.TemplateDoorSign:    "Türschild",
	model.TemplateEventBoard:  "Ereignistafel",
	model.TemplateNoticeBoard: "Hinweistafel",
	model.TemplateRoomBooking: "Raumbuchung",
	model.TemplateDefault:     "Standard",
}

// SeedTemplates registers the built-in template types and imports any SVG
// variants found under dir. Files are named <type>_<width>x<height>.svg;
// existing rows keep their (possibly edited) markup.
func SeedTemplates(dir string) {
	for typeKey, label := range builtinTemplateTypes {
		if err := db.UpsertTemplateType(typeKey, label); err != nil {
			log.Error().Err(err).Str("type", typeKey).Msg("failed to seed template type")
		}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.svg"))
	if err != nil || len(files) == 0 {
		log.Info().Str("dir", dir).Msg("no template files to import")
		return
	}

	for _, f := range files {
		typeKey, width, height, ok := parseTemplateFilename(filepath.Base(f))
		if !ok {
			log.Warn().Str("file", f).Msg("skipping template with unparseable name")
			continue
		}
		if _, err := db.GetTemplate(typeKey, width, height); err == nil {
			continue
		}

		markup, err := os.ReadFile(f)
		if err != nil {
			log.Error().Err(err).Str("file", f).Msg("failed to read template file")
			continue
		}
		tpl := &model.TemplateDefinition{
			TypeKey:    typeKey,
			Name:       strings.TrimSuffix(filepath.Base(f), ".svg"),
			Width:      width,
			Height:     height,
			SVGContent: string(markup),
		}
		if err := db.CreateTemplate(tpl); err != nil {
			log.Error().Err(err).Str("file", f).Msg("failed to import template")
			continue
		}
		log.Info().Str("type", typeKey).Int("width", width).Int("height", height).
			Msg("imported template")
	}
}

// parseTemplateFilename splits "door-sign_400x300.svg" into its parts.
func parseTemplateFilename(name string) (typeKey string, width, height int, ok bool) {
	name = strings.TrimSuffix(name, ".svg")
	idx := strings.LastIndex(name, "_")
	if idx < 1 {
		return "", 0, 0, false
	}
	typeKey = name[:idx]
	dims := strings.SplitN(name[idx+1:], "x", 2)
	if len(dims) != 2 {
		return "", 0, 0, false
	}
	w, err1 := strconv.Atoi(dims[0])
	h, err2 := strconv.Atoi(dims[1])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return "", 0, 0, false
	}
	return typeKey, w, h, true
}
