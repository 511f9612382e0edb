package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

const (
	tagCacheKey = "catalog:tags"
	tagCacheTTL = time.Hour
)

// CatalogService serves tag and ingredient reference data. The redis client
// backs the tag list cache and may be nil.
type CatalogService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogService(db *gorm.DB, redisClient *redis.Client) *CatalogService {
	return &CatalogService{
		db:    db,
		redis: redisClient,
	}
}

// ListTags returns all tags ordered by name, served from cache when possible.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, tagCacheKey).Bytes(); err == nil {
			var tags []models.Tag
			if err := json.Unmarshal(cached, &tags); err == nil {
				return tags, nil
			}
		}
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}

	if s.redis != nil {
		if encoded, err := json.Marshal(tags); err == nil {
			s.redis.Set(ctx, tagCacheKey, encoded, tagCacheTTL)
		}
	}
	return tags, nil
}

// GetTag returns a single tag by id.
func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// CreateTag validates and stores a new tag, normalizing its color.
func (s *CatalogService) CreateTag(ctx context.Context, name, color, slug string) (*models.Tag, error) {
	ve := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		ve.Add("name", "must not be empty")
	}
	if strings.TrimSpace(slug) == "" {
		ve.Add("slug", "must not be empty")
	}
	normalized, err := NormalizeHexColor(color)
	if err != nil {
		ve.Add("color", err.Error())
	}
	if !ve.Empty() {
		return nil, ve
	}

	tag := models.Tag{
		Name:  strings.TrimSpace(name),
		Color: normalized,
		Slug:  strings.TrimSpace(slug),
	}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.redis != nil {
		s.redis.Del(ctx, tagCacheKey)
	}
	return &tag, nil
}

// SearchIngredients lists ingredients matching the query, exact-prefix
// matches first, then substring matches, deduplicated. An empty query lists
// everything ordered by name.
func (s *CatalogService) SearchIngredients(ctx context.Context, query string) ([]models.Ingredient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		var all []models.Ingredient
		if err := s.db.WithContext(ctx).Order("name ASC").Find(&all).Error; err != nil {
			return nil, err
		}
		return all, nil
	}

	like := strings.ToLower(query)
	var prefix []models.Ingredient
	if err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", like+"%").
		Order("name ASC").
		Find(&prefix).Error; err != nil {
		return nil, err
	}

	var contains []models.Ingredient
	if err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? AND LOWER(name) NOT LIKE ?", "%"+like+"%", like+"%").
		Order("name ASC").
		Find(&contains).Error; err != nil {
		return nil, err
	}

	return append(prefix, contains...), nil
}

// GetIngredient returns a single ingredient by id.
func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// CreateIngredient stores a new ingredient.
func (s *CatalogService) CreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, error) {
	ve := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		ve.Add("name", "must not be empty")
	}
	if strings.TrimSpace(unit) == "" {
		ve.Add("measurement_unit", "must not be empty")
	}
	if !ve.Empty() {
		return nil, ve
	}

	ingredient := models.Ingredient{
		Name:            strings.TrimSpace(name),
		MeasurementUnit: strings.TrimSpace(unit),
	}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// NormalizeHexColor validates a 3- or 6-digit hex color and returns it with
// a leading '#'.
func NormalizeHexColor(color string) (string, error) {
	value := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(value) != 3 && len(value) != 6 {
		return "", fmt.Errorf("%s is wrong length (%d)", value, len(value))
	}
	for _, r := range value {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "", fmt.Errorf("%s is not hexadecimal", value)
		}
	}
	return "#" + value, nil
}
