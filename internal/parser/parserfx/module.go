package parserfx

import (
	"github.com/rcihq/rci/internal/parser"
	"github.com/rcihq/rci/internal/parser/docparser"
	"go.uber.org/fx"
)

// NewParser creates the component-doc parser.
func NewParser() parser.Parser {
	return docparser.New()
}

// Module provides parser components.
var Module = fx.Module("parser",
	fx.Provide(NewParser),
)
