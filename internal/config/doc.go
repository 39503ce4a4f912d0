// Package config provides configuration management for routecleaner.
//
// # Configuration Sources
//
// Configuration is layered, later sources winning:
//
//	1. Built-in defaults (Default, DefaultPipelineConfig)
//	2. A YAML file: $ROUTECLEANER_CONFIG, or routecleaner.yaml, or
//	   configs/routecleaner.yaml
//	3. Environment variables (ROUTECLEANER_*)
//
// # Environment Variables
//
// Variables follow the struct layout:
//
//	ROUTECLEANER_PIPELINE_SEPARATOR_SIZE=4
//	ROUTECLEANER_PIPELINE_CATEGORY_ORDER=XVAN,ΒΟΡΕΙΟ,ΝΟΤΙΟ
//	ROUTECLEANER_PIPELINE_PRIORITY_COLUMN=        # empty disables priority
//	ROUTECLEANER_OUTPUT_DAY_OFFSET=0
//	ROUTECLEANER_LOGGING_LEVEL=debug
//	ROUTECLEANER_SERVER_PORT=9090
//
// # Pipeline
//
// PipelineConfig carries every column name the cleaning stages use. The
// defaults describe the delivery export of the dispatch office:
//
//	pipeline:
//	  identity_key: [Διεύθυνση, Δρομολόγιο, Μεταφορέας]
//	  priority_column: Αιτιολογία
//	  sort_keys: [Δρομολόγιο, Περιοχή, Επωνυμία]
//	  category_column: Δρομολόγιο
//	  category_order: [XVAN, ΠΡΑΚΤΟΡΕΙΑ, ...]
//	  separator_size: 6
//
// # Validation
//
// Struct tags are checked with go-playground/validator. Violations come back
// as VALIDATION AppErrors naming the YAML key, e.g.
// "pipeline.separator_size: must be >= 0, got -1".
package config
