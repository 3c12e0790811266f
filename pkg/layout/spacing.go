package layout

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance.
var validate = validator.New()

// LevelSpacing holds the horizontal spacing parameters of one depth level.
type LevelSpacing struct {
	// Multiplier scales BaseWidth for this level.
	Multiplier float64 `json:"multiplier" toml:"multiplier" yaml:"multiplier" validate:"gt=0"`
	// SiblingFactor widens the gap as the sibling count grows.
	SiblingFactor float64 `json:"sibling_factor" toml:"sibling_factor" yaml:"sibling_factor" validate:"gte=0"`
}

// SpacingConfig controls horizontal and vertical gap growth by depth and
// sibling count. The engine never modifies it.
type SpacingConfig struct {
	// BaseWidth is the base horizontal unit.
	BaseWidth float64 `json:"base_width" toml:"base_width" yaml:"base_width" validate:"gt=0"`
	// Levels[0] applies to depth 1; the last entry applies to every deeper level.
	Levels []LevelSpacing `json:"levels" toml:"levels" yaml:"levels" validate:"required,min=1,dive"`
	// VerticalBase is the per-depth vertical offset.
	VerticalBase float64 `json:"vertical_base" toml:"vertical_base" yaml:"vertical_base" validate:"gte=0"`
	// VerticalIncrement grows the vertical offset with depth.
	VerticalIncrement float64 `json:"vertical_increment" toml:"vertical_increment" yaml:"vertical_increment" validate:"gte=0"`
	// LateralOffset is added per sibling index from depth 2 on.
	LateralOffset float64 `json:"lateral_offset" toml:"lateral_offset" yaml:"lateral_offset" validate:"gte=0"`
}

// Default spacing values.
const (
	DefaultBaseWidth         = 150.0
	DefaultVerticalBase      = 120.0
	DefaultVerticalIncrement = 20.0
	DefaultLateralOffset     = 12.0
)

// DefaultSpacing returns the stock configuration. Level-1 subtrees get the
// widest gaps.
func DefaultSpacing() SpacingConfig {
	return SpacingConfig{
		BaseWidth: DefaultBaseWidth,
		Levels: []LevelSpacing{
			{Multiplier: 2.0, SiblingFactor: 0.5},
			{Multiplier: 1.0, SiblingFactor: 0.35},
		},
		VerticalBase:      DefaultVerticalBase,
		VerticalIncrement: DefaultVerticalIncrement,
		LateralOffset:     DefaultLateralOffset,
	}
}

// fallbackLevel is used when a config carries no levels at all.
var fallbackLevel = LevelSpacing{Multiplier: 1}

// Level returns the spacing entry for a depth (depth 1 = Levels[0]).
func (c SpacingConfig) Level(depth int) LevelSpacing {
	if len(c.Levels) == 0 {
		return fallbackLevel
	}
	i := min(max(depth-1, 0), len(c.Levels)-1)
	return c.Levels[i]
}

// Gap returns the horizontal distance between adjacent siblings at depth.
func (c SpacingConfig) Gap(depth, siblings int) float64 {
	l := c.Level(depth)
	return c.BaseWidth * l.Multiplier * math.Max(1, float64(siblings)*l.SiblingFactor)
}

// Y returns the vertical coordinate of a depth.
func (c SpacingConfig) Y(depth int) float64 {
	d := float64(depth)
	return d * (c.VerticalBase + d*c.VerticalIncrement)
}

// Clone returns a deep copy.
func (c SpacingConfig) Clone() SpacingConfig {
	c.Levels = slices.Clone(c.Levels)
	return c
}

// Validate checks the configuration with struct tag rules.
func (c SpacingConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError flattens validator errors into one readable error.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "min":
			msgs = append(msgs, fmt.Sprintf("%s: at least one entry is required", fe.Namespace()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than %s", fe.Namespace(), fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s: must not be negative", fe.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
