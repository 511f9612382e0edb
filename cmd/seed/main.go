package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/Valneuskaya/foodgram-project-react/config"
	"github.com/Valneuskaya/foodgram-project-react/internal/database"
	"github.com/Valneuskaya/foodgram-project-react/internal/models"
	"github.com/Valneuskaya/foodgram-project-react/internal/service"
)

// Seeds the catalog from fixture files. The ingredients file uses the
// [{"name": ..., "measurement_unit": ...}] shape, tags use
// [{"name": ..., "color": ..., "slug": ...}].
func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "path to the ingredients fixture")
	tagsPath := flag.String("tags", "", "path to an optional tags fixture")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var ingredients []models.Ingredient
	if err := loadJSON(*ingredientsPath, &ingredients); err != nil {
		log.Fatalf("Failed to read ingredients fixture: %v", err)
	}

	created := 0
	for _, ing := range ingredients {
		var count int64
		db.Model(&models.Ingredient{}).
			Where("name = ? AND measurement_unit = ?", ing.Name, ing.MeasurementUnit).
			Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Ingredient{Name: ing.Name, MeasurementUnit: ing.MeasurementUnit}).Error; err != nil {
			log.Fatalf("Failed to insert ingredient %q: %v", ing.Name, err)
		}
		created++
	}
	log.Printf("Seeded %d ingredients (%d already present)", created, len(ingredients)-created)

	if *tagsPath == "" {
		return
	}

	var tags []models.Tag
	if err := loadJSON(*tagsPath, &tags); err != nil {
		log.Fatalf("Failed to read tags fixture: %v", err)
	}
	for _, tag := range tags {
		color, err := service.NormalizeHexColor(tag.Color)
		if err != nil {
			log.Fatalf("Invalid color for tag %q: %v", tag.Name, err)
		}
		var count int64
		db.Model(&models.Tag{}).Where("slug = ?", tag.Slug).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Tag{Name: tag.Name, Color: color, Slug: tag.Slug}).Error; err != nil {
			log.Fatalf("Failed to insert tag %q: %v", tag.Name, err)
		}
	}
	log.Printf("Seeded %d tags", len(tags))
}

func loadJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
