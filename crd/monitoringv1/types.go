package monitoringv1

// Package monitoringv1 declares the subset of the Prometheus Operator
// ServiceMonitor schema this platform writes. The operator itself is an
// external collaborator; only the object shape is needed here.

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// Group is the Prometheus Operator API group.
	Group = "monitoring.coreos.com"
	// Version is this package's API version.
	Version = "v1"
	// KindServiceMonitor is the scrape-config kind.
	KindServiceMonitor = "ServiceMonitor"
)

// APIVersion is the fully qualified apiVersion string.
const APIVersion = Group + "/" + Version

// ServiceMonitor declares how the in-cluster Prometheus scrapes an app.
type ServiceMonitor struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ServiceMonitorSpec `json:"spec,omitempty"`
}

// ServiceMonitorSpec selects services and endpoints to scrape.
type ServiceMonitorSpec struct {
	Endpoints         []Endpoint           `json:"endpoints,omitempty"`
	Selector          metav1.LabelSelector `json:"selector"`
	NamespaceSelector NamespaceSelector    `json:"namespaceSelector,omitempty"`
}

// Endpoint is one scrape endpoint.
type Endpoint struct {
	Port     string `json:"port"`
	Path     string `json:"path,omitempty"`
	Interval string `json:"interval,omitempty"`
	// MetricRelabelings rewrite sample labels before ingestion.
	MetricRelabelings []RelabelConfig `json:"metricRelabelings,omitempty"`
}

// NamespaceSelector restricts service discovery to namespaces.
type NamespaceSelector struct {
	Any        bool     `json:"any,omitempty"`
	MatchNames []string `json:"matchNames,omitempty"`
}

// RelabelConfig is one relabeling rule.
type RelabelConfig struct {
	Action       string   `json:"action,omitempty"`
	SourceLabels []string `json:"sourceLabels,omitempty"`
	TargetLabel  string   `json:"targetLabel,omitempty"`
	Replacement  string   `json:"replacement,omitempty"`
}
