package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-research/internal/config"
	"gopkg.in/yaml.v3"
)

func main() {
	// Create a config instance
	cfg := config.DefaultConfig()

	// Generate schema JSON
	schemaJSON, err := cfg.GenerateSchemaJSON()
	if err != nil {
		log.Fatalf("Failed to generate schema: %v", err)
	}

	// Set the output path
	schemaName := "research-pipeline-config.json"
	schemaPath := filepath.Join("./config", schemaName)
	sampleConfigPath := filepath.Join("./config", "research-pipeline-config.yaml")

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	// Write schema to file
	err = os.WriteFile(schemaPath, []byte(schemaJSON), 0644)
	if err != nil {
		log.Fatalf("Failed to write schema to file: %v", err)
	}

	// write sample config to file if doesn't exist
	if _, err := os.Stat(sampleConfigPath); os.IsNotExist(err) {
		yamlBytes, err := yaml.Marshal(cfg)
		if err != nil {
			log.Fatalf("Failed to marshal sample config to yaml: %v", err)
		}
		// add # yaml-language-server: $schema=... to the beginning of the file
		yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)
		err = os.WriteFile(sampleConfigPath, yamlBytes, 0644)
		if err != nil {
			log.Fatalf("Failed to write sample config to file: %v", err)
		}
		log.Printf("Sample config successfully generated at %s", sampleConfigPath)
	}
	log.Printf("Schema successfully generated at %s", schemaPath)
}
