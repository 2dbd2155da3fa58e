package migration

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"

	"github.com/google/uuid"
	"github.com/marke1-web/foodgram-project-react/entities"
	"gorm.io/gorm"
)

var hexColor = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

var defaultTags = []entities.Tag{
	{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Обед", Color: "#49B64E", Slug: "lunch"},
	{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
}

// SeedCatalog fills the tag and ingredient catalogs. Tags come from the fixed
// default set; ingredients are read from data/ingredients.csv
// (name,measurement_unit per line) when the file exists. Existing rows are
// left untouched.
func SeedCatalog(db *gorm.DB, ingredientsCSV string) error {
	for _, tag := range defaultTags {
		if !hexColor.MatchString(tag.Color) {
			return fmt.Errorf("tag %q: color %q is not a HEX color", tag.Slug, tag.Color)
		}
		var count int64
		if err := db.Model(&entities.Tag{}).Where("slug = ?", tag.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		tag.ID = uuid.New()
		if err := db.Create(&tag).Error; err != nil {
			return err
		}
	}

	if ingredientsCSV == "" {
		return nil
	}
	file, err := os.Open(ingredientsCSV)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return err
	}

	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		var count int64
		if err := db.Model(&entities.Ingredient{}).
			Where("name = ? AND measurement_unit = ?", record[0], record[1]).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		ingredient := entities.Ingredient{
			ID:              uuid.New(),
			Name:            record[0],
			MeasurementUnit: record[1],
		}
		if err := db.Create(&ingredient).Error; err != nil {
			return err
		}
	}

	fmt.Println("Catalog seed complete")
	return nil
}
