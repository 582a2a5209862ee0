// catalog-import upserts achievement definitions from a JSON file into a
// local sqlite database. Meant for development and fixture setups; the
// production catalog is managed through the admin API.
package main

import (
	"fmt"
	"log"
	"os"

	"vidverse/catalogfile"
	"vidverse/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	dbPath := "./data/vidverse.db"
	jsonPath := "./data/achievements.json"
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		dbPath = os.Args[2]
	}

	defs, err := catalogfile.Load(jsonPath)
	if err != nil {
		log.Fatal(err)
	}
	if errs := catalogfile.Check(defs); len(errs) > 0 {
		for _, e := range errs {
			fmt.Println("error:", e)
		}
		log.Fatalf("catalog file has %d invalid entries, nothing imported", len(errs))
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := db.AutoMigrate(&models.Achievement{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Printf("Found %d definitions\n\n", len(defs))

	imported := 0
	for i := range defs {
		result := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "icon", "category", "rarity", "points",
				"condition_type", "condition_value", "is_active",
			}),
		}).Create(&defs[i])
		if result.Error != nil {
			log.Fatalf("failed to import %q: %v", defs[i].Name, result.Error)
		}
		fmt.Printf("Imported: %s\n", defs[i].Name)
		imported++
	}

	fmt.Printf("\nDone. %d definitions imported into %s\n", imported, dbPath)
}
