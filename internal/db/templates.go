package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/model"
)

const templateColumns = `
	id, type_key, name, description, orientation, width, height, svg_content, updated_at`

func GetTemplate(typeKey string, width, height int) (*model.TemplateDefinition, error) {
	var t model.TemplateDefinition
	err := DB.Get(&t, `
		SELECT `+templateColumns+`
		  FROM templates
		 WHERE type_key = $1 AND width = $2 AND height = $3`, typeKey, width, height)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("type", typeKey).Msg("failed to get template")
		return nil, err
	}
	return &t, nil
}

// ResolveTemplate finds the variant matching the display size, falling back
// to the largest variant of the type when no exact size exists.
func ResolveTemplate(typeKey string, width, height int) (*model.TemplateDefinition, error) {
	if width > 0 && height > 0 {
		t, err := GetTemplate(typeKey, width, height)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	var t model.TemplateDefinition
	err := DB.Get(&t, `
		SELECT `+templateColumns+`
		  FROM templates
		 WHERE type_key = $1
		 ORDER BY width * height DESC
		 LIMIT 1`, typeKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("type", typeKey).Msg("failed to resolve template")
		return nil, err
	}
	return &t, nil
}

func ListTemplates() ([]model.TemplateDefinition, error) {
	var templates []model.TemplateDefinition
	err := DB.Select(&templates, `
		SELECT `+templateColumns+` FROM templates ORDER BY type_key, width, height`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list templates")
	}
	return templates, err
}

func CreateTemplate(t *model.TemplateDefinition) error {
	const q = `
	INSERT INTO templates
	  (type_key, name, description, orientation, width, height, svg_content, updated_at)
	VALUES (:type_key, :name, :description, :orientation, :width, :height, :svg_content, now())
	RETURNING id, updated_at`
	rows, err := DB.NamedQuery(q, t)
	if err != nil {
		log.Error().Err(err).Str("type", t.TypeKey).Msg("failed to create template")
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&t.ID, &t.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTemplate rewrites the content fields of an existing variant; the
// (type, size) key itself is immutable.
func UpdateTemplate(t *model.TemplateDefinition) error {
	res, err := DB.NamedExec(`
		UPDATE templates
		   SET name = :name, description = :description,
		       orientation = :orientation, svg_content = :svg_content,
		       updated_at = now()
		 WHERE type_key = :type_key AND width = :width AND height = :height`, t)
	if err != nil {
		log.Error().Err(err).Str("type", t.TypeKey).Msg("failed to update template")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// template type catalog

func ListTemplateTypes() ([]model.TemplateType, error) {
	var types []model.TemplateType
	err := DB.Select(&types, `SELECT id, type_key, label FROM template_types ORDER BY type_key`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list template types")
	}
	return types, err
}

func GetTemplateType(typeKey string) (*model.TemplateType, error) {
	var t model.TemplateType
	err := DB.Get(&t, `SELECT id, type_key, label FROM template_types WHERE type_key = $1`, typeKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("type", typeKey).Msg("failed to get template type")
		return nil, err
	}
	return &t, nil
}

func UpsertTemplateType(typeKey, label string) error {
	_, err := DB.Exec(`
		INSERT INTO template_types (type_key, label)
		VALUES ($1, $2)
		ON CONFLICT (type_key) DO UPDATE SET label = EXCLUDED.label`, typeKey, label)
	if err != nil {
		log.Error().Err(err).Str("type", typeKey).Msg("failed to upsert template type")
	}
	return err
}
