package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeKind discriminates the node variant carried in Node.Data.
type NodeKind string

const (
	NodeKindProcess    NodeKind = "process"
	NodeKindDatabase   NodeKind = "database"
	NodeKindQueue      NodeKind = "queue"
	NodeKindInfra      NodeKind = "infra"
	NodeKindAPIBinding NodeKind = "api_binding"
)

// NodeKinds lists every valid node kind.
var NodeKinds = []NodeKind{
	NodeKindProcess, NodeKindDatabase, NodeKindQueue, NodeKindInfra, NodeKindAPIBinding,
}

// NodeData is one arm of the node variant union. Exactly five
// implementations exist, closed at the kind level and independently
// extensible per variant.
type NodeData interface {
	Kind() NodeKind
	CloneData() NodeData
}

// --- process variant ---

// ProcessType classifies what a process node computes.
type ProcessType string

const (
	ProcessTypeCalculation          ProcessType = "calculation"
	ProcessTypeDatabaseWorkflow     ProcessType = "database_workflow"
	ProcessTypeQueueConsumer        ProcessType = "queue_consumer"
	ProcessTypeJob                  ProcessType = "job"
	ProcessTypeOrchestratedWorkflow ProcessType = "orchestrated_workflow"
)

// ExecutionMode describes how a process is invoked.
type ExecutionMode string

const (
	ExecutionSync        ExecutionMode = "sync"
	ExecutionAsync       ExecutionMode = "async"
	ExecutionScheduled   ExecutionMode = "scheduled"
	ExecutionEventDriven ExecutionMode = "event_driven"
)

// StepKind classifies a step inside a process.
type StepKind string

const (
	StepKindCompute      StepKind = "compute"
	StepKindDBOperation  StepKind = "db_operation"
	StepKindExternalCall StepKind = "external_call"
	StepKindCondition    StepKind = "condition"
	StepKindTransform    StepKind = "transform"
	StepKindRef          StepKind = "ref"
)

// Step is one ordered unit of work inside a process node. Config is
// opaque at the schema layer; kind-specific validation happens in the
// semantic pass.
type Step struct {
	ID     string          `json:"id"`
	Name   string          `json:"name,omitempty"`
	Kind   StepKind        `json:"kind"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Clone returns a copy of the step with its own config buffer.
func (s Step) Clone() Step {
	out := s
	out.Config = bytes.Clone(s.Config)
	return out
}

// Trigger names the queue or event that fires an event-driven process.
type Trigger struct {
	Queue string `json:"queue,omitempty"`
	Event string `json:"event,omitempty"`
}

// ProcessOutputs splits process outputs into success and error shapes.
type ProcessOutputs struct {
	Success []Field `json:"success"`
	Error   []Field `json:"error"`
}

// ProcessData is the process variant: a backend unit of computation with
// typed inputs/outputs and an ordered step list. ID is the process's own
// logical name, referenced by api_binding nodes via ProcessRef (a soft
// reference, never enforced as a foreign key).
type ProcessData struct {
	NodeType    NodeKind       `json:"kind"`
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	ProcessType ProcessType    `json:"processType"`
	Execution   ExecutionMode  `json:"execution"`
	Inputs      []Field        `json:"inputs"`
	Outputs     ProcessOutputs `json:"outputs"`
	Steps       []Step         `json:"steps"`
	Schedule    string         `json:"schedule,omitempty"`
	Trigger     *Trigger       `json:"trigger,omitempty"`
}

func (d *ProcessData) Kind() NodeKind { return NodeKindProcess }

func (d *ProcessData) CloneData() NodeData {
	out := *d
	out.Inputs = CloneFields(d.Inputs)
	out.Outputs.Success = CloneFields(d.Outputs.Success)
	out.Outputs.Error = CloneFields(d.Outputs.Error)
	out.Steps = make([]Step, len(d.Steps))
	for i, s := range d.Steps {
		out.Steps[i] = s.Clone()
	}
	if d.Trigger != nil {
		t := *d.Trigger
		out.Trigger = &t
	}
	return &out
}

// --- database variant ---

// DBType classifies the database family.
type DBType string

const (
	DBTypeSQL   DBType = "sql"
	DBTypeNoSQL DBType = "nosql"
	DBTypeKV    DBType = "kv"
	DBTypeGraph DBType = "graph"
)

// DBCapabilities are seven independent feature flags.
type DBCapabilities struct {
	CRUD         bool `json:"crud"`
	Transactions bool `json:"transactions"`
	Joins        bool `json:"joins"`
	Aggregations bool `json:"aggregations"`
	Indexes      bool `json:"indexes"`
	Constraints  bool `json:"constraints"`
	Pagination   bool `json:"pagination"`
}

// QueryOperation is the SQL verb of a stored query.
type QueryOperation string

const (
	QuerySelect QueryOperation = "SELECT"
	QueryInsert QueryOperation = "INSERT"
	QueryUpdate QueryOperation = "UPDATE"
	QueryDelete QueryOperation = "DELETE"
)

// Query is a named query attached to a database node. GeneratedCode is a
// derived preview string, regenerated whenever the query changes.
type Query struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Operation     QueryOperation `json:"operation"`
	Target        string         `json:"target"`
	Conditions    string         `json:"conditions,omitempty"`
	GeneratedCode string         `json:"generatedCode,omitempty"`
}

// Table describes one table or collection exposed by a database node.
type Table struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields,omitempty"`
}

// DatabaseData is the database variant.
type DatabaseData struct {
	NodeType     NodeKind       `json:"kind"`
	Label        string         `json:"label"`
	DBType       DBType         `json:"dbType"`
	Engine       string         `json:"engine"`
	Capabilities DBCapabilities `json:"capabilities"`
	Schemas      []string       `json:"schemas"`
	Tables       []Table        `json:"tables,omitempty"`
	Queries      []Query        `json:"queries,omitempty"`
}

func (d *DatabaseData) Kind() NodeKind { return NodeKindDatabase }

func (d *DatabaseData) CloneData() NodeData {
	out := *d
	out.Schemas = append([]string(nil), d.Schemas...)
	out.Tables = make([]Table, len(d.Tables))
	for i, t := range d.Tables {
		out.Tables[i] = Table{Name: t.Name, Fields: CloneFields(t.Fields)}
	}
	out.Queries = append([]Query(nil), d.Queries...)
	return &out
}

// --- queue variant ---

// DeliveryMode is the queue's delivery guarantee.
type DeliveryMode string

const (
	DeliveryAtLeastOnce DeliveryMode = "at_least_once"
	DeliveryAtMostOnce  DeliveryMode = "at_most_once"
	DeliveryExactlyOnce DeliveryMode = "exactly_once"
)

// BackoffStrategy is the retry backoff curve.
type BackoffStrategy string

const (
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// QueueRetry configures consumer retry behavior.
type QueueRetry struct {
	MaxAttempts int             `json:"maxAttempts"`
	Backoff     BackoffStrategy `json:"backoff"`
}

// QueueData is the queue variant.
type QueueData struct {
	NodeType   NodeKind     `json:"kind"`
	Label      string       `json:"label"`
	Delivery   DeliveryMode `json:"delivery"`
	Retry      QueueRetry   `json:"retry"`
	DeadLetter bool         `json:"deadLetter"`
}

func (d *QueueData) Kind() NodeKind { return NodeKindQueue }

func (d *QueueData) CloneData() NodeData {
	out := *d
	return &out
}

// --- api_binding variant ---

// APIType is the API contract family.
type APIType string

const (
	APITypeOpenAPI  APIType = "openapi"
	APITypeAsyncAPI APIType = "asyncapi"
)

// HTTPMethod is the bound HTTP verb.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
)

// SecurityType is the authentication scheme of an API binding.
type SecurityType string

const (
	SecurityNone   SecurityType = "none"
	SecurityAPIKey SecurityType = "api_key"
	SecurityBearer SecurityType = "bearer"
	SecurityOAuth2 SecurityType = "oauth2"
	SecurityBasic  SecurityType = "basic"
)

// RequestBody describes the request payload shape.
type RequestBody struct {
	ContentType string  `json:"contentType"`
	Schema      []Field `json:"schema"`
}

// APIRequest groups the request-side field lists.
type APIRequest struct {
	PathParams  []Field     `json:"pathParams"`
	QueryParams []Field     `json:"queryParams"`
	Headers     []Field     `json:"headers"`
	Body        RequestBody `json:"body"`
}

// APIResponse is one response arm (success or error).
type APIResponse struct {
	StatusCode int     `json:"statusCode"`
	Schema     []Field `json:"schema"`
}

// APIResponses groups the success and error response shapes.
type APIResponses struct {
	Success APIResponse `json:"success"`
	Error   APIResponse `json:"error"`
}

// APISecurity configures the binding's auth scheme.
type APISecurity struct {
	Type       SecurityType `json:"type"`
	HeaderName string       `json:"headerName,omitempty"`
	Scopes     []string     `json:"scopes,omitempty"`
}

// RateLimit configures request throttling on the binding.
type RateLimit struct {
	Enabled  bool   `json:"enabled"`
	Requests int    `json:"requests,omitempty"`
	Window   string `json:"window,omitempty"`
}

// APIBindingData is the api_binding variant: one HTTP operation bound to
// a process by name. Route may embed :param path placeholders. ProcessRef
// is a soft reference to a process node's data ID.
type APIBindingData struct {
	NodeType   NodeKind     `json:"kind"`
	Label      string       `json:"label"`
	APIType    APIType      `json:"apiType"`
	Method     HTTPMethod   `json:"method"`
	Route      string       `json:"route"`
	Request    APIRequest   `json:"request"`
	Responses  APIResponses `json:"responses"`
	Security   APISecurity  `json:"security"`
	RateLimit  RateLimit    `json:"rateLimit"`
	Version    string       `json:"version,omitempty"`
	Deprecated bool         `json:"deprecated"`
	ProcessRef string       `json:"processRef,omitempty"`
}

func (d *APIBindingData) Kind() NodeKind { return NodeKindAPIBinding }

func (d *APIBindingData) CloneData() NodeData {
	out := *d
	out.Request.PathParams = CloneFields(d.Request.PathParams)
	out.Request.QueryParams = CloneFields(d.Request.QueryParams)
	out.Request.Headers = CloneFields(d.Request.Headers)
	out.Request.Body.Schema = CloneFields(d.Request.Body.Schema)
	out.Responses.Success.Schema = CloneFields(d.Responses.Success.Schema)
	out.Responses.Error.Schema = CloneFields(d.Responses.Error.Schema)
	out.Security.Scopes = append([]string(nil), d.Security.Scopes...)
	return &out
}

// --- decoding ---

// DecodeNodeData decodes raw JSON into the variant selected by kind.
// Unknown fields are rejected: the inspector blind-casts stored data to
// the expected variant shape, so a malformed document must fail here
// rather than corrupt UI state at runtime.
func DecodeNodeData(kind NodeKind, raw json.RawMessage) (NodeData, error) {
	var data NodeData
	switch kind {
	case NodeKindProcess:
		data = &ProcessData{}
	case NodeKindDatabase:
		data = &DatabaseData{}
	case NodeKindQueue:
		data = &QueueData{}
	case NodeKindInfra:
		data = &InfraData{}
	case NodeKindAPIBinding:
		data = &APIBindingData{}
	default:
		return nil, NewErrorf(ErrCodeValidation, "unknown node kind %q", kind)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(data); err != nil {
		return nil, NewErrorf(ErrCodeValidation,
			"malformed %s node data: %s", kind, err.Error()).WithCause(err)
	}
	return data, nil
}

// kindProbe extracts only the discriminator from raw node data.
type kindProbe struct {
	Kind NodeKind `json:"kind"`
}

func probeKind(raw json.RawMessage) (NodeKind, error) {
	var p kindProbe
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("probe node kind: %w", err)
	}
	if p.Kind == "" {
		return "", NewError(ErrCodeValidation, "node data missing kind discriminator")
	}
	return p.Kind, nil
}
