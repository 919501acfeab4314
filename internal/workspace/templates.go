package workspace

import "github.com/rendis/atelier/pkg/schema"

// nodeTemplates maps a template key (per kind or kind/sub-kind) to a
// factory producing a fresh default NodeData. Factories return new values
// on every call so placed nodes never share state.
var nodeTemplates = map[string]func() schema.NodeData{
	"process":       newProcessTemplate,
	"database":      newDatabaseTemplate,
	"queue":         newQueueTemplate,
	"infra":         newInfraTemplate,
	"api_binding":   func() schema.NodeData { return newAPIBindingTemplate(schema.MethodGet) },
	"api_get":       func() schema.NodeData { return newAPIBindingTemplate(schema.MethodGet) },
	"api_post":      func() schema.NodeData { return newAPIBindingTemplate(schema.MethodPost) },
	"api_put":       func() schema.NodeData { return newAPIBindingTemplate(schema.MethodPut) },
	"api_delete":    func() schema.NodeData { return newAPIBindingTemplate(schema.MethodDelete) },
	"api_patch":     func() schema.NodeData { return newAPIBindingTemplate(schema.MethodPatch) },
	"infra_ec2":     func() schema.NodeData { return newInfraResourceTemplate(schema.ResourceEC2) },
	"infra_lambda":  func() schema.NodeData { return newInfraResourceTemplate(schema.ResourceLambda) },
	"infra_eks":     func() schema.NodeData { return newInfraResourceTemplate(schema.ResourceEKS) },
	"infra_vpc":     func() schema.NodeData { return newInfraResourceTemplate(schema.ResourceVPC) },
	"infra_s3":      func() schema.NodeData { return newInfraResourceTemplate(schema.ResourceS3) },
	"infra_rds":     func() schema.NodeData { return newInfraResourceTemplate(schema.ResourceRDS) },
	"infra_lb":      func() schema.NodeData { return newInfraResourceTemplate(schema.ResourceLoadBalancer) },
	"infra_hpc":     func() schema.NodeData { return newInfraResourceTemplate(schema.ResourceHPC) },
}

// TemplateKeys returns the sorted-stable list of template keys the store
// accepts, for surface discovery by the API layer.
func TemplateKeys() []string {
	keys := make([]string, 0, len(nodeTemplates))
	for k := range nodeTemplates {
		keys = append(keys, k)
	}
	return keys
}

func newProcessTemplate() schema.NodeData {
	return &schema.ProcessData{
		NodeType:    schema.NodeKindProcess,
		ID:          "newProcess",
		Label:       "New Process",
		ProcessType: schema.ProcessTypeCalculation,
		Execution:   schema.ExecutionSync,
		Inputs:      []schema.Field{},
		Outputs: schema.ProcessOutputs{
			Success: []schema.Field{},
			Error:   []schema.Field{},
		},
		Steps: []schema.Step{},
	}
}

func newDatabaseTemplate() schema.NodeData {
	return &schema.DatabaseData{
		NodeType: schema.NodeKindDatabase,
		Label:    "New Database",
		DBType:   schema.DBTypeSQL,
		Engine:   "postgresql",
		Capabilities: schema.DBCapabilities{
			CRUD:         true,
			Transactions: true,
			Joins:        true,
			Aggregations: true,
			Indexes:      true,
			Constraints:  true,
			Pagination:   true,
		},
		Schemas: []string{"public"},
	}
}

func newQueueTemplate() schema.NodeData {
	return &schema.QueueData{
		NodeType: schema.NodeKindQueue,
		Label:    "New Queue",
		Delivery: schema.DeliveryAtLeastOnce,
		Retry: schema.QueueRetry{
			MaxAttempts: 3,
			Backoff:     schema.BackoffExponential,
		},
		DeadLetter: true,
	}
}

func newInfraTemplate() schema.NodeData {
	return newInfraResourceTemplate(schema.ResourceEC2)
}

func newInfraResourceTemplate(r schema.ResourceType) schema.NodeData {
	data := &schema.InfraData{
		NodeType:    schema.NodeKindInfra,
		Label:       "New Resource",
		Resource:    r,
		Provider:    "aws",
		Environment: "dev",
		Region:      "us-east-1",
	}
	switch r {
	case schema.ResourceEC2:
		data.Config = &schema.EC2Config{InstanceType: "t3.micro", Count: 1, DiskGB: 20}
	case schema.ResourceLambda:
		data.Config = &schema.LambdaConfig{Runtime: "go1.x", MemoryMB: 128, TimeoutSec: 30}
	case schema.ResourceS3:
		data.Config = &schema.S3Config{Versioning: true}
	case schema.ResourceRDS:
		data.Config = &schema.RDSConfig{Engine: "postgres", InstanceClass: "db.t3.micro", StorageGB: 20}
	case schema.ResourceEKS:
		data.Config = &schema.EKSConfig{ClusterVersion: "1.30", NodeGroupSize: 2, NodeType: "t3.medium"}
	case schema.ResourceVPC:
		data.Config = &schema.VPCConfig{CIDR: "10.0.0.0/16", EnableDNS: true, AvailabilityAZs: 2}
	case schema.ResourceLoadBalancer:
		data.Config = &schema.LoadBalancerConfig{LBType: "application", TargetPort: 8080}
	case schema.ResourceHPC:
		data.Config = &schema.HPCConfig{NodeCount: 4, CPUsPerNode: 32, Scheduler: "slurm"}
	}
	return data
}

func newAPIBindingTemplate(method schema.HTTPMethod) schema.NodeData {
	return &schema.APIBindingData{
		NodeType: schema.NodeKindAPIBinding,
		Label:    "New Endpoint",
		APIType:  schema.APITypeOpenAPI,
		Method:   method,
		Route:    "/new-endpoint",
		Request: schema.APIRequest{
			PathParams:  []schema.Field{},
			QueryParams: []schema.Field{},
			Headers:     []schema.Field{},
			Body: schema.RequestBody{
				ContentType: "application/json",
				Schema:      []schema.Field{},
			},
		},
		Responses: schema.APIResponses{
			Success: schema.APIResponse{StatusCode: 200, Schema: []schema.Field{}},
			Error:   schema.APIResponse{StatusCode: 400, Schema: []schema.Field{}},
		},
		Security:  schema.APISecurity{Type: schema.SecurityNone},
		RateLimit: schema.RateLimit{Enabled: false},
		Version:   "v1",
	}
}
