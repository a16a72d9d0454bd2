package parser

import "github.com/rcihq/rci/internal/models"

// Parser walks a component source tree and produces one ParsedComponent per
// component directory.
type Parser interface {
	ParseAllComponents(sourceRoot, packageName string) ([]models.ParsedComponent, error)
}
