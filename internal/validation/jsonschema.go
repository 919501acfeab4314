package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rendis/atelier/pkg/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// graphSchemaJSON is the JSON Schema for graph documents. Embedded as a
// constant to avoid filesystem dependencies. Every object is closed
// (additionalProperties: false): the inspector blind-casts stored data to
// the expected variant shape, so unknown fields must be rejected here.
const graphSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://atelier.dev/schemas/graph.json",
  "type": "object",
  "required": ["nodes", "edges"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "edges": {
      "type": "array",
      "items": { "$ref": "#/$defs/edge" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "field": {
      "type": "object",
      "required": ["name", "type"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "type": { "enum": ["string", "number", "boolean", "object", "array", "any"] },
        "required": { "type": "boolean" },
        "description": { "type": "string" },
        "properties": {
          "type": "array",
          "items": { "$ref": "#/$defs/field" }
        },
        "items": { "$ref": "#/$defs/field" },
        "format": { "type": "string" },
        "pattern": { "type": "string" },
        "minLength": { "type": "integer", "minimum": 0 },
        "maxLength": { "type": "integer", "minimum": 0 },
        "minimum": { "type": "number" },
        "maximum": { "type": "number" }
      },
      "additionalProperties": false
    },
    "field_list": {
      "type": "array",
      "items": { "$ref": "#/$defs/field" }
    },
    "step": {
      "type": "object",
      "required": ["id", "kind"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "name": { "type": "string" },
        "kind": { "enum": ["compute", "db_operation", "external_call", "condition", "transform", "ref"] },
        "config": {}
      },
      "additionalProperties": false
    },
    "process_data": {
      "type": "object",
      "required": ["kind", "id", "label", "processType", "execution", "inputs", "outputs", "steps"],
      "properties": {
        "kind": { "const": "process" },
        "id": { "type": "string", "minLength": 1 },
        "label": { "type": "string" },
        "processType": { "enum": ["calculation", "database_workflow", "queue_consumer", "job", "orchestrated_workflow"] },
        "execution": { "enum": ["sync", "async", "scheduled", "event_driven"] },
        "inputs": { "$ref": "#/$defs/field_list" },
        "outputs": {
          "type": "object",
          "required": ["success", "error"],
          "properties": {
            "success": { "$ref": "#/$defs/field_list" },
            "error": { "$ref": "#/$defs/field_list" }
          },
          "additionalProperties": false
        },
        "steps": {
          "type": "array",
          "items": { "$ref": "#/$defs/step" }
        },
        "schedule": { "type": "string" },
        "trigger": {
          "type": "object",
          "properties": {
            "queue": { "type": "string" },
            "event": { "type": "string" }
          },
          "additionalProperties": false
        }
      },
      "additionalProperties": false
    },
    "database_data": {
      "type": "object",
      "required": ["kind", "dbType", "engine", "capabilities", "schemas"],
      "properties": {
        "kind": { "const": "database" },
        "label": { "type": "string" },
        "dbType": { "enum": ["sql", "nosql", "kv", "graph"] },
        "engine": { "type": "string", "minLength": 1 },
        "capabilities": {
          "type": "object",
          "required": ["crud", "transactions", "joins", "aggregations", "indexes", "constraints", "pagination"],
          "properties": {
            "crud": { "type": "boolean" },
            "transactions": { "type": "boolean" },
            "joins": { "type": "boolean" },
            "aggregations": { "type": "boolean" },
            "indexes": { "type": "boolean" },
            "constraints": { "type": "boolean" },
            "pagination": { "type": "boolean" }
          },
          "additionalProperties": false
        },
        "schemas": {
          "type": "array",
          "items": { "type": "string" }
        },
        "tables": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["name"],
            "properties": {
              "name": { "type": "string", "minLength": 1 },
              "fields": { "$ref": "#/$defs/field_list" }
            },
            "additionalProperties": false
          }
        },
        "queries": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "name", "operation", "target"],
            "properties": {
              "id": { "type": "string", "minLength": 1 },
              "name": { "type": "string", "minLength": 1 },
              "operation": { "enum": ["SELECT", "INSERT", "UPDATE", "DELETE"] },
              "target": { "type": "string", "minLength": 1 },
              "conditions": { "type": "string" },
              "generatedCode": { "type": "string" }
            },
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    },
    "queue_data": {
      "type": "object",
      "required": ["kind", "delivery", "retry", "deadLetter"],
      "properties": {
        "kind": { "const": "queue" },
        "label": { "type": "string" },
        "delivery": { "enum": ["at_least_once", "at_most_once", "exactly_once"] },
        "retry": {
          "type": "object",
          "required": ["maxAttempts", "backoff"],
          "properties": {
            "maxAttempts": { "type": "integer", "minimum": 0 },
            "backoff": { "enum": ["linear", "exponential"] }
          },
          "additionalProperties": false
        },
        "deadLetter": { "type": "boolean" }
      },
      "additionalProperties": false
    },
    "infra_data": {
      "type": "object",
      "required": ["kind", "resourceType", "provider", "environment", "region", "config"],
      "properties": {
        "kind": { "const": "infra" },
        "label": { "type": "string" },
        "resourceType": { "enum": ["ec2", "lambda", "eks", "vpc", "s3", "rds", "load_balancer", "hpc"] },
        "provider": { "type": "string", "minLength": 1 },
        "environment": { "type": "string", "minLength": 1 },
        "region": { "type": "string", "minLength": 1 },
        "tags": {
          "type": "array",
          "items": { "type": "string" }
        },
        "config": { "type": "object" }
      },
      "additionalProperties": false,
      "allOf": [
        {
          "if": { "properties": { "resourceType": { "const": "ec2" } }, "required": ["resourceType"] },
          "then": { "properties": { "config": { "$ref": "#/$defs/ec2_config" } } }
        },
        {
          "if": { "properties": { "resourceType": { "const": "lambda" } }, "required": ["resourceType"] },
          "then": { "properties": { "config": { "$ref": "#/$defs/lambda_config" } } }
        },
        {
          "if": { "properties": { "resourceType": { "const": "eks" } }, "required": ["resourceType"] },
          "then": { "properties": { "config": { "$ref": "#/$defs/eks_config" } } }
        },
        {
          "if": { "properties": { "resourceType": { "const": "vpc" } }, "required": ["resourceType"] },
          "then": { "properties": { "config": { "$ref": "#/$defs/vpc_config" } } }
        },
        {
          "if": { "properties": { "resourceType": { "const": "s3" } }, "required": ["resourceType"] },
          "then": { "properties": { "config": { "$ref": "#/$defs/s3_config" } } }
        },
        {
          "if": { "properties": { "resourceType": { "const": "rds" } }, "required": ["resourceType"] },
          "then": { "properties": { "config": { "$ref": "#/$defs/rds_config" } } }
        },
        {
          "if": { "properties": { "resourceType": { "const": "load_balancer" } }, "required": ["resourceType"] },
          "then": { "properties": { "config": { "$ref": "#/$defs/load_balancer_config" } } }
        },
        {
          "if": { "properties": { "resourceType": { "const": "hpc" } }, "required": ["resourceType"] },
          "then": { "properties": { "config": { "$ref": "#/$defs/hpc_config" } } }
        }
      ]
    },
    "ec2_config": {
      "type": "object",
      "required": ["instanceType", "ami", "count", "subnetIds", "securityGroups", "diskGb", "autoscalingMin", "autoscalingMax"],
      "properties": {
        "instanceType": { "type": "string", "minLength": 1 },
        "ami": { "type": "string", "minLength": 1 },
        "count": { "type": "integer", "minimum": 0 },
        "subnetIds": { "type": "array", "items": { "type": "string" } },
        "securityGroups": { "type": "array", "items": { "type": "string" } },
        "diskGb": { "type": "integer", "minimum": 1 },
        "autoscalingMin": { "type": "integer", "minimum": 0 },
        "autoscalingMax": { "type": "integer", "minimum": 0 }
      },
      "additionalProperties": false
    },
    "lambda_config": {
      "type": "object",
      "required": ["runtime", "handler", "memoryMb", "timeoutSec"],
      "properties": {
        "runtime": { "type": "string", "minLength": 1 },
        "handler": { "type": "string", "minLength": 1 },
        "memoryMb": { "type": "integer", "minimum": 64 },
        "timeoutSec": { "type": "integer", "minimum": 1 },
        "envVars": { "type": "object", "additionalProperties": { "type": "string" } },
        "triggerArn": { "type": "string" }
      },
      "additionalProperties": false
    },
    "eks_config": {
      "type": "object",
      "required": ["clusterVersion", "nodeGroupSize", "nodeType", "subnetIds", "fargate"],
      "properties": {
        "clusterVersion": { "type": "string", "minLength": 1 },
        "nodeGroupSize": { "type": "integer", "minimum": 0 },
        "nodeType": { "type": "string", "minLength": 1 },
        "subnetIds": { "type": "array", "items": { "type": "string" } },
        "fargate": { "type": "boolean" }
      },
      "additionalProperties": false
    },
    "vpc_config": {
      "type": "object",
      "required": ["cidr", "publicSubnets", "privateSubnets", "enableDns", "enableNatGw", "availabilityAzs"],
      "properties": {
        "cidr": { "type": "string", "minLength": 1 },
        "publicSubnets": { "type": "array", "items": { "type": "string" } },
        "privateSubnets": { "type": "array", "items": { "type": "string" } },
        "enableDns": { "type": "boolean" },
        "enableNatGw": { "type": "boolean" },
        "availabilityAzs": { "type": "integer", "minimum": 1 }
      },
      "additionalProperties": false
    },
    "s3_config": {
      "type": "object",
      "required": ["bucketName", "versioning", "encryption", "publicAccess"],
      "properties": {
        "bucketName": { "type": "string", "minLength": 1 },
        "versioning": { "type": "boolean" },
        "encryption": { "type": "boolean" },
        "publicAccess": { "type": "boolean" },
        "lifecycleDays": { "type": "integer", "minimum": 1 }
      },
      "additionalProperties": false
    },
    "rds_config": {
      "type": "object",
      "required": ["engine", "instanceClass", "storageGb", "multiAz", "backupRetentionDays"],
      "properties": {
        "engine": { "type": "string", "minLength": 1 },
        "instanceClass": { "type": "string", "minLength": 1 },
        "storageGb": { "type": "integer", "minimum": 1 },
        "multiAz": { "type": "boolean" },
        "backupRetentionDays": { "type": "integer", "minimum": 0 }
      },
      "additionalProperties": false
    },
    "load_balancer_config": {
      "type": "object",
      "required": ["lbType", "targetPort", "internal"],
      "properties": {
        "lbType": { "enum": ["application", "network"] },
        "targetPort": { "type": "integer", "minimum": 1, "maximum": 65535 },
        "healthCheckPath": { "type": "string" },
        "internal": { "type": "boolean" }
      },
      "additionalProperties": false
    },
    "hpc_config": {
      "type": "object",
      "required": ["nodeCount", "cpusPerNode", "gpusPerNode", "interconnect", "scheduler"],
      "properties": {
        "nodeCount": { "type": "integer", "minimum": 1 },
        "cpusPerNode": { "type": "integer", "minimum": 1 },
        "gpusPerNode": { "type": "integer", "minimum": 0 },
        "interconnect": { "type": "string", "minLength": 1 },
        "scheduler": { "type": "string", "minLength": 1 }
      },
      "additionalProperties": false
    },
    "api_binding_data": {
      "type": "object",
      "required": ["kind", "apiType", "method", "route", "request", "responses", "security", "rateLimit", "deprecated"],
      "properties": {
        "kind": { "const": "api_binding" },
        "label": { "type": "string" },
        "apiType": { "enum": ["openapi", "asyncapi"] },
        "method": { "enum": ["GET", "POST", "PUT", "DELETE", "PATCH"] },
        "route": { "type": "string", "minLength": 1 },
        "request": {
          "type": "object",
          "required": ["pathParams", "queryParams", "headers", "body"],
          "properties": {
            "pathParams": { "$ref": "#/$defs/field_list" },
            "queryParams": { "$ref": "#/$defs/field_list" },
            "headers": { "$ref": "#/$defs/field_list" },
            "body": {
              "type": "object",
              "required": ["contentType", "schema"],
              "properties": {
                "contentType": { "type": "string" },
                "schema": { "$ref": "#/$defs/field_list" }
              },
              "additionalProperties": false
            }
          },
          "additionalProperties": false
        },
        "responses": {
          "type": "object",
          "required": ["success", "error"],
          "properties": {
            "success": { "$ref": "#/$defs/api_response" },
            "error": { "$ref": "#/$defs/api_response" }
          },
          "additionalProperties": false
        },
        "security": {
          "type": "object",
          "required": ["type"],
          "properties": {
            "type": { "enum": ["none", "api_key", "bearer", "oauth2", "basic"] },
            "headerName": { "type": "string" },
            "scopes": { "type": "array", "items": { "type": "string" } }
          },
          "additionalProperties": false
        },
        "rateLimit": {
          "type": "object",
          "required": ["enabled"],
          "properties": {
            "enabled": { "type": "boolean" },
            "requests": { "type": "integer", "minimum": 1 },
            "window": { "type": "string" }
          },
          "additionalProperties": false
        },
        "version": { "type": "string" },
        "deprecated": { "type": "boolean" },
        "processRef": { "type": "string" }
      },
      "additionalProperties": false
    },
    "api_response": {
      "type": "object",
      "required": ["statusCode", "schema"],
      "properties": {
        "statusCode": { "type": "integer", "minimum": 100, "maximum": 599 },
        "schema": { "$ref": "#/$defs/field_list" }
      },
      "additionalProperties": false
    },
    "node_data": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "kind": { "enum": ["process", "database", "queue", "infra", "api_binding"] }
      },
      "allOf": [
        {
          "if": { "properties": { "kind": { "const": "process" } }, "required": ["kind"] },
          "then": { "$ref": "#/$defs/process_data" }
        },
        {
          "if": { "properties": { "kind": { "const": "database" } }, "required": ["kind"] },
          "then": { "$ref": "#/$defs/database_data" }
        },
        {
          "if": { "properties": { "kind": { "const": "queue" } }, "required": ["kind"] },
          "then": { "$ref": "#/$defs/queue_data" }
        },
        {
          "if": { "properties": { "kind": { "const": "infra" } }, "required": ["kind"] },
          "then": { "$ref": "#/$defs/infra_data" }
        },
        {
          "if": { "properties": { "kind": { "const": "api_binding" } }, "required": ["kind"] },
          "then": { "$ref": "#/$defs/api_binding_data" }
        }
      ]
    },
    "node": {
      "type": "object",
      "required": ["id", "type", "position", "data"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": { "enum": ["process", "database", "queue", "infra", "api_binding"] },
        "position": {
          "type": "object",
          "required": ["x", "y"],
          "properties": {
            "x": { "type": "number" },
            "y": { "type": "number" }
          },
          "additionalProperties": false
        },
        "selected": { "type": "boolean" },
        "data": { "$ref": "#/$defs/node_data" }
      },
      "additionalProperties": false
    },
    "edge": {
      "type": "object",
      "required": ["id", "source", "target"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "source": { "type": "string", "minLength": 1 },
        "target": { "type": "string", "minLength": 1 },
        "sourceHandle": { "type": "string" },
        "targetHandle": { "type": "string" },
        "type": { "enum": ["default", "step"] },
        "animated": { "type": "boolean" }
      },
      "additionalProperties": false
    }
  }
}`

// GraphValidator implements the Validator interface using JSON Schema
// Draft 2020-12. It is safe for concurrent use.
type GraphValidator struct {
	graphSchema *jsonschema.Schema
	exprs       ExpressionChecker

	// mu guards the cache for dynamically compiled field schemas.
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewGraphValidator creates a GraphValidator with the graph schema
// pre-compiled.
func NewGraphValidator() (*GraphValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(graphSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal graph schema: %w", err)
	}
	if err := c.AddResource("https://atelier.dev/schemas/graph.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add graph schema resource: %w", err)
	}

	gs, err := c.Compile("https://atelier.dev/schemas/graph.json")
	if err != nil {
		return nil, fmt.Errorf("compile graph schema: %w", err)
	}

	return &GraphValidator{
		graphSchema: gs,
		cache:       make(map[string]*jsonschema.Schema),
	}, nil
}

// ValidateDocument validates a raw graph document: JSON Schema first, then
// the structural and semantic passes on the decoded graph.
func (v *GraphValidator) ValidateDocument(doc []byte) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(string(doc)))
	if err != nil {
		result.AddError("/", schema.ErrCodeValidation, "document is not valid JSON: "+err.Error())
		return result
	}

	if err := v.graphSchema.Validate(parsed); err != nil {
		for _, violation := range collectViolations(err) {
			result.AddError(violation.path, schema.ErrCodeValidation, violation.message)
		}
		return result
	}

	var g schema.Graph
	if err := json.Unmarshal(doc, &g); err != nil {
		// Decoder-level checks (kind/type agreement) the JSON Schema
		// does not cover.
		result.AddError("/", schema.ErrCodeValidation, err.Error())
		return result
	}

	result.Merge(validateStructural(&g))
	result.Merge(validateSemantic(&g, v.exprs))
	return result
}

// WithExpressionChecker enables compile-checking of step expressions in
// the semantic pass.
func (v *GraphValidator) WithExpressionChecker(c ExpressionChecker) *GraphValidator {
	v.exprs = c
	return v
}

// ValidateGraph runs the pipeline on an already-decoded graph by
// serializing it once through the schema path.
func (v *GraphValidator) ValidateGraph(g *schema.Graph) *schema.ValidationResult {
	if g == nil {
		result := &schema.ValidationResult{}
		result.AddError("/", schema.ErrCodeValidation, "graph is nil")
		return result
	}

	raw, err := json.Marshal(g)
	if err != nil {
		result := &schema.ValidationResult{}
		result.AddError("/", schema.ErrCodeValidation, "failed to serialize graph: "+err.Error())
		return result
	}
	return v.ValidateDocument(raw)
}

// ValidatePayload validates an untyped payload against a Field list by
// compiling the field definition to a JSON Schema. Compiled schemas are
// cached per definition.
func (v *GraphValidator) ValidatePayload(payload any, fields []schema.Field) error {
	compiled, err := v.getOrCompileFields(fields)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "invalid field definition").WithCause(err)
	}

	doc, err := toJSONValue(payload)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize payload").WithCause(err)
	}

	if err := compiled.Validate(doc); err != nil {
		return toAtelierError(err)
	}
	return nil
}

// getOrCompileFields returns a cached compiled schema for the field list
// or compiles and caches a new one.
func (v *GraphValidator) getOrCompileFields(fields []schema.Field) (*jsonschema.Schema, error) {
	def := FieldsToJSONSchema(fields)
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal field schema: %w", err)
	}
	key := string(raw)

	v.mu.RLock()
	if cached, ok := v.cache[key]; ok {
		v.mu.RUnlock()
		return cached, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	if cached, ok := v.cache[key]; ok {
		return cached, nil
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(key))
	if err != nil {
		return nil, fmt.Errorf("unmarshal field schema: %w", err)
	}

	// Each dynamic schema gets a unique URL to avoid compiler collisions.
	url := fmt.Sprintf("atelier://field-schema/%d", len(v.cache))

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add field schema resource: %w", err)
	}

	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile field schema: %w", err)
	}

	v.cache[key] = compiled
	return compiled, nil
}

// FieldsToJSONSchema converts an ordered Field list into a JSON Schema
// object definition. An object/array field without properties/items is
// treated as opaque (no constraint beyond its base type).
func FieldsToJSONSchema(fields []schema.Field) map[string]any {
	props := make(map[string]any, len(fields))
	var required []string
	for i := range fields {
		f := &fields[i]
		props[f.Name] = fieldToJSONSchema(f)
		if f.IsRequired() {
			required = append(required, f.Name)
		}
	}

	def := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		def["required"] = required
	}
	return def
}

func fieldToJSONSchema(f *schema.Field) map[string]any {
	out := map[string]any{}

	switch f.Type {
	case schema.FieldTypeString:
		out["type"] = "string"
		if f.Format != "" {
			out["format"] = f.Format
		}
		if f.Pattern != "" {
			out["pattern"] = f.Pattern
		}
		if f.MinLength != nil {
			out["minLength"] = *f.MinLength
		}
		if f.MaxLength != nil {
			out["maxLength"] = *f.MaxLength
		}
	case schema.FieldTypeNumber:
		out["type"] = "number"
		if f.Minimum != nil {
			out["minimum"] = *f.Minimum
		}
		if f.Maximum != nil {
			out["maximum"] = *f.Maximum
		}
	case schema.FieldTypeBoolean:
		out["type"] = "boolean"
	case schema.FieldTypeObject:
		if len(f.Properties) == 0 {
			out["type"] = "object"
			break
		}
		return FieldsToJSONSchema(f.Properties)
	case schema.FieldTypeArray:
		out["type"] = "array"
		if f.Items != nil {
			out["items"] = fieldToJSONSchema(f.Items)
		}
	case schema.FieldTypeAny:
		// no constraint
	}
	return out
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so
// that numeric values become json.Number (required by the jsonschema
// library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// violation is one leaf failure extracted from a ValidationError tree.
type violation struct {
	path    string
	message string
}

// toAtelierError converts a jsonschema.ValidationError into an
// AtelierError carrying per-path violations for form-level display.
func toAtelierError(err error) *schema.AtelierError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	details := make([]string, len(violations))
	for i, v := range violations {
		details[i] = fmt.Sprintf("%s: %s", v.path, v.message)
	}

	msg := details[0]
	if len(details) > 1 {
		msg = fmt.Sprintf("validation failed with %d errors", len(details))
	}
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": details})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(err error) []violation {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []violation{{path: "/", message: err.Error()}}
	}

	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []violation{{path: loc, message: verr.Error()}}
	}

	var out []violation
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}
