package schema

import (
	"bytes"
	"encoding/json"
)

// ResourceType discriminates the infra variant's config shape. The config
// record is closed per resource type: cross-type fields are rejected.
type ResourceType string

const (
	ResourceEC2          ResourceType = "ec2"
	ResourceLambda       ResourceType = "lambda"
	ResourceEKS          ResourceType = "eks"
	ResourceVPC          ResourceType = "vpc"
	ResourceS3           ResourceType = "s3"
	ResourceRDS          ResourceType = "rds"
	ResourceLoadBalancer ResourceType = "load_balancer"
	ResourceHPC          ResourceType = "hpc"
)

// ResourceTypes lists every valid infra resource type.
var ResourceTypes = []ResourceType{
	ResourceEC2, ResourceLambda, ResourceEKS, ResourceVPC,
	ResourceS3, ResourceRDS, ResourceLoadBalancer, ResourceHPC,
}

// InfraConfig is the second-level union inside the infra variant: exactly
// one closed config shape per ResourceType.
type InfraConfig interface {
	ResourceType() ResourceType
	cloneConfig() InfraConfig
}

// EC2Config configures an EC2 instance group.
type EC2Config struct {
	InstanceType   string   `json:"instanceType"`
	AMI            string   `json:"ami"`
	Count          int      `json:"count"`
	SubnetIDs      []string `json:"subnetIds"`
	SecurityGroups []string `json:"securityGroups"`
	DiskGB         int      `json:"diskGb"`
	AutoscalingMin int      `json:"autoscalingMin"`
	AutoscalingMax int      `json:"autoscalingMax"`
}

func (c *EC2Config) ResourceType() ResourceType { return ResourceEC2 }
func (c *EC2Config) cloneConfig() InfraConfig {
	out := *c
	out.SubnetIDs = append([]string(nil), c.SubnetIDs...)
	out.SecurityGroups = append([]string(nil), c.SecurityGroups...)
	return &out
}

// LambdaConfig configures a serverless function.
type LambdaConfig struct {
	Runtime    string            `json:"runtime"`
	Handler    string            `json:"handler"`
	MemoryMB   int               `json:"memoryMb"`
	TimeoutSec int               `json:"timeoutSec"`
	EnvVars    map[string]string `json:"envVars,omitempty"`
	TriggerARN string            `json:"triggerArn,omitempty"`
}

func (c *LambdaConfig) ResourceType() ResourceType { return ResourceLambda }
func (c *LambdaConfig) cloneConfig() InfraConfig {
	out := *c
	if c.EnvVars != nil {
		out.EnvVars = make(map[string]string, len(c.EnvVars))
		for k, v := range c.EnvVars {
			out.EnvVars[k] = v
		}
	}
	return &out
}

// EKSConfig configures a managed Kubernetes cluster.
type EKSConfig struct {
	ClusterVersion string   `json:"clusterVersion"`
	NodeGroupSize  int      `json:"nodeGroupSize"`
	NodeType       string   `json:"nodeType"`
	SubnetIDs      []string `json:"subnetIds"`
	Fargate        bool     `json:"fargate"`
}

func (c *EKSConfig) ResourceType() ResourceType { return ResourceEKS }
func (c *EKSConfig) cloneConfig() InfraConfig {
	out := *c
	out.SubnetIDs = append([]string(nil), c.SubnetIDs...)
	return &out
}

// VPCConfig configures a virtual network.
type VPCConfig struct {
	CIDR            string   `json:"cidr"`
	PublicSubnets   []string `json:"publicSubnets"`
	PrivateSubnets  []string `json:"privateSubnets"`
	EnableDNS       bool     `json:"enableDns"`
	EnableNATGW     bool     `json:"enableNatGw"`
	AvailabilityAZs int      `json:"availabilityAzs"`
}

func (c *VPCConfig) ResourceType() ResourceType { return ResourceVPC }
func (c *VPCConfig) cloneConfig() InfraConfig {
	out := *c
	out.PublicSubnets = append([]string(nil), c.PublicSubnets...)
	out.PrivateSubnets = append([]string(nil), c.PrivateSubnets...)
	return &out
}

// S3Config configures an object storage bucket.
type S3Config struct {
	BucketName    string `json:"bucketName"`
	Versioning    bool   `json:"versioning"`
	Encryption    bool   `json:"encryption"`
	PublicAccess  bool   `json:"publicAccess"`
	LifecycleDays int    `json:"lifecycleDays,omitempty"`
}

func (c *S3Config) ResourceType() ResourceType { return ResourceS3 }
func (c *S3Config) cloneConfig() InfraConfig {
	out := *c
	return &out
}

// RDSConfig configures a managed relational database.
type RDSConfig struct {
	Engine              string `json:"engine"`
	InstanceClass       string `json:"instanceClass"`
	StorageGB           int    `json:"storageGb"`
	MultiAZ             bool   `json:"multiAz"`
	BackupRetentionDays int    `json:"backupRetentionDays"`
}

func (c *RDSConfig) ResourceType() ResourceType { return ResourceRDS }
func (c *RDSConfig) cloneConfig() InfraConfig {
	out := *c
	return &out
}

// LoadBalancerConfig configures an application or network load balancer.
type LoadBalancerConfig struct {
	LBType          string `json:"lbType"`
	TargetPort      int    `json:"targetPort"`
	HealthCheckPath string `json:"healthCheckPath,omitempty"`
	Internal        bool   `json:"internal"`
}

func (c *LoadBalancerConfig) ResourceType() ResourceType { return ResourceLoadBalancer }
func (c *LoadBalancerConfig) cloneConfig() InfraConfig {
	out := *c
	return &out
}

// HPCConfig configures a high-performance compute cluster.
type HPCConfig struct {
	NodeCount    int    `json:"nodeCount"`
	CPUsPerNode  int    `json:"cpusPerNode"`
	GPUsPerNode  int    `json:"gpusPerNode"`
	Interconnect string `json:"interconnect"`
	Scheduler    string `json:"scheduler"`
}

func (c *HPCConfig) ResourceType() ResourceType { return ResourceHPC }
func (c *HPCConfig) cloneConfig() InfraConfig {
	out := *c
	return &out
}

// InfraData is the infra variant. Config's shape is determined exactly by
// Resource: decoding validates kind first, then resourceType within the
// infra arm (a two-level tagged union, not two independent unions).
type InfraData struct {
	NodeType    NodeKind     `json:"kind"`
	Label       string       `json:"label"`
	Resource    ResourceType `json:"resourceType"`
	Provider    string       `json:"provider"`
	Environment string       `json:"environment"`
	Region      string       `json:"region"`
	Tags        []string     `json:"tags,omitempty"`
	Config      InfraConfig  `json:"config"`
}

func (d *InfraData) Kind() NodeKind { return NodeKindInfra }

func (d *InfraData) CloneData() NodeData {
	out := *d
	out.Tags = append([]string(nil), d.Tags...)
	if d.Config != nil {
		out.Config = d.Config.cloneConfig()
	}
	return &out
}

// infraEnvelope mirrors InfraData with config left raw for two-phase decode.
type infraEnvelope struct {
	NodeType    NodeKind        `json:"kind"`
	Label       string          `json:"label"`
	Resource    ResourceType    `json:"resourceType"`
	Provider    string          `json:"provider"`
	Environment string          `json:"environment"`
	Region      string          `json:"region"`
	Tags        []string        `json:"tags,omitempty"`
	Config      json.RawMessage `json:"config"`
}

// UnmarshalJSON decodes the shared infra fields, then dispatches the
// config record on resourceType. Unknown fields fail closed at both
// levels.
func (d *InfraData) UnmarshalJSON(raw []byte) error {
	var env infraEnvelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return err
	}

	cfg, err := decodeInfraConfig(env.Resource, env.Config)
	if err != nil {
		return err
	}

	d.NodeType = env.NodeType
	d.Label = env.Label
	d.Resource = env.Resource
	d.Provider = env.Provider
	d.Environment = env.Environment
	d.Region = env.Region
	d.Tags = env.Tags
	d.Config = cfg
	return nil
}

// decodeInfraConfig decodes a config record into the shape selected by
// resourceType.
func decodeInfraConfig(rt ResourceType, raw json.RawMessage) (InfraConfig, error) {
	var cfg InfraConfig
	switch rt {
	case ResourceEC2:
		cfg = &EC2Config{}
	case ResourceLambda:
		cfg = &LambdaConfig{}
	case ResourceEKS:
		cfg = &EKSConfig{}
	case ResourceVPC:
		cfg = &VPCConfig{}
	case ResourceS3:
		cfg = &S3Config{}
	case ResourceRDS:
		cfg = &RDSConfig{}
	case ResourceLoadBalancer:
		cfg = &LoadBalancerConfig{}
	case ResourceHPC:
		cfg = &HPCConfig{}
	default:
		return nil, NewErrorf(ErrCodeValidation, "unknown infra resource type %q", rt)
	}

	if len(raw) == 0 {
		return nil, NewErrorf(ErrCodeValidation, "infra node missing config for resource type %q", rt)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, NewErrorf(ErrCodeValidation,
			"malformed %s config: %s", rt, err.Error()).WithCause(err)
	}
	return cfg, nil
}
