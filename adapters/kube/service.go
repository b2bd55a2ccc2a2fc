package kube

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// ServicePort is one exposed port of a process service.
type ServicePort struct {
	Name       string
	Port       int32
	TargetPort int32
}

// DefaultServicePort is used when a process declares no ports.
var DefaultServicePort = ServicePort{Name: "http", Port: 80, TargetPort: 5000}

// BuildProcessService renders the Service of one process type. The port
// list replaces the live one on update; the caller preserves clusterIP via
// PreserveServiceIdentity before saving over an existing object.
func BuildProcessService(name, namespace string, labels, selector map[string]string, ports []ServicePort) *corev1.Service {
	if len(ports) == 0 {
		ports = []ServicePort{DefaultServicePort}
	}
	svcPorts := make([]corev1.ServicePort, 0, len(ports))
	for _, p := range ports {
		svcPorts = append(svcPorts, corev1.ServicePort{
			Name:       p.Name,
			Port:       p.Port,
			TargetPort: intstr.FromInt32(p.TargetPort),
		})
	}
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{
			Ports:    svcPorts,
			Selector: selector,
		},
	}
}

// PreserveServiceIdentity copies the immutable fields of the live Service
// onto the desired body so a full update does not clash with server-owned
// state.
func PreserveServiceIdentity(desired *corev1.Service, current *unstructured.Unstructured) {
	if current == nil {
		return
	}
	if ip, ok, _ := unstructured.NestedString(current.Object, "spec", "clusterIP"); ok {
		desired.Spec.ClusterIP = ip
	}
	if ips, ok, _ := unstructured.NestedStringSlice(current.Object, "spec", "clusterIPs"); ok {
		desired.Spec.ClusterIPs = ips
	}
	desired.ResourceVersion = current.GetResourceVersion()
}

// ToUnstructured converts a typed object for the entity framework.
func ToUnstructured(obj runtime.Object) (*unstructured.Unstructured, error) {
	m, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, err
	}
	return &unstructured.Unstructured{Object: m}, nil
}

// FromUnstructured converts an unstructured object back to a typed one.
func FromUnstructured(u *unstructured.Unstructured, into any) error {
	return runtime.DefaultUnstructuredConverter.FromUnstructured(u.Object, into)
}
