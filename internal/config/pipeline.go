package config

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "routecleaner/internal/errors"
)

// PipelineConfig names the columns and parameters of the three cleaning
// stages. It is passed to the pipeline at construction.
type PipelineConfig struct {
	// IdentityKey columns jointly define duplicate membership.
	IdentityKey []string `json:"identity_key" yaml:"identity_key" envconfig:"IDENTITY_KEY" validate:"required,min=1,dive,required"`
	// PriorityColumn marks preferred duplicates. Empty disables the preference.
	PriorityColumn string `json:"priority_column" yaml:"priority_column" envconfig:"PRIORITY_COLUMN"`
	// SortKeys order rows before deduplication.
	SortKeys       []string `json:"sort_keys" yaml:"sort_keys" envconfig:"SORT_KEYS" validate:"dive,required"`
	CategoryColumn string   `json:"category_column" yaml:"category_column" envconfig:"CATEGORY_COLUMN" validate:"required"`
	// CategoryOrder ranks the groups; unlisted labels are dropped.
	CategoryOrder []string `json:"category_order" yaml:"category_order" envconfig:"CATEGORY_ORDER" validate:"required,min=1,unique,dive,required"`
	SeparatorSize int      `json:"separator_size" yaml:"separator_size" envconfig:"SEPARATOR_SIZE" validate:"gte=0"`
}

// Validate checks the pipeline parameters
func (p PipelineConfig) Validate() error {
	return validateStruct(p)
}

// Columns lists every column the pipeline reads, without duplicates, in
// first-reference order.
func (p PipelineConfig) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !seen[n] {
				seen[n] = true
				cols = append(cols, n)
			}
		}
	}
	add(p.SortKeys...)
	add(p.IdentityKey...)
	add(p.PriorityColumn, p.CategoryColumn)
	return cols
}

// WithSeparatorSize returns a copy with a different separator size
func (p PipelineConfig) WithSeparatorSize(n int) PipelineConfig {
	p.SeparatorSize = n
	return p
}

// DefaultPipelineConfig returns the route-sheet configuration: Greek column
// names of the delivery export and the carrier group order used by the
// dispatch office.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		IdentityKey:    []string{ColumnAddress, ColumnRoute, ColumnCarrier},
		PriorityColumn: ColumnReason,
		SortKeys:       []string{ColumnRoute, ColumnArea, ColumnName},
		CategoryColumn: ColumnRoute,
		CategoryOrder:  append([]string(nil), DefaultCategoryOrder...),
		SeparatorSize:  DefaultSeparatorSize,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

func validateStruct(v interface{}) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewConfigError("invalid configuration", err)
	}

	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	field = strings.TrimPrefix(field, "PipelineConfig.")
	return apperrors.NewAppValidationError(field, describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return "is required"
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "lte", "max":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	case "unique":
		return "must not contain duplicates"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
