package kube

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/bkpaas/workloads/crd/monitoringv1"
	"github.com/bkpaas/workloads/domain/model"
)

// MetricsPortName is the Service port scraped by the monitoring stack.
const MetricsPortName = "metrics"

// BuildServiceMonitor renders the ServiceMonitor for an app's metrics
// endpoint. Samples get the app identity stamped on via metric relabelings
// so downstream dashboards can aggregate per app.
func BuildServiceMonitor(app *model.WlApp, interval string) *monitoringv1.ServiceMonitor {
	if interval == "" {
		interval = "60s"
	}
	identity := map[string]string{
		MonitorLabelAppCode:     app.AppCode,
		MonitorLabelModuleName:  app.ModuleName,
		MonitorLabelEnvironment: app.Environment,
	}
	relabelings := make([]monitoringv1.RelabelConfig, 0, len(identity))
	for _, label := range []string{MonitorLabelAppCode, MonitorLabelModuleName, MonitorLabelEnvironment} {
		relabelings = append(relabelings, monitoringv1.RelabelConfig{
			Action:      "replace",
			TargetLabel: label,
			Replacement: identity[label],
		})
	}
	return &monitoringv1.ServiceMonitor{
		TypeMeta: metav1.TypeMeta{
			APIVersion: monitoringv1.APIVersion,
			Kind:       monitoringv1.KindServiceMonitor,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      app.SchedulerSafeName(),
			Namespace: app.Namespace(),
			Labels:    MonitorLabels(app),
		},
		Spec: monitoringv1.ServiceMonitorSpec{
			Endpoints: []monitoringv1.Endpoint{{
				Port:              MetricsPortName,
				Interval:          interval,
				Path:              "/metrics",
				MetricRelabelings: relabelings,
			}},
			Selector: metav1.LabelSelector{
				MatchLabels: MonitorLabels(app),
			},
			NamespaceSelector: monitoringv1.NamespaceSelector{
				MatchNames: []string{app.Namespace()},
			},
		},
	}
}

// MonitorLabels returns the labels shared by the metrics Service and its
// ServiceMonitor selector.
func MonitorLabels(app *model.WlApp) map[string]string {
	return map[string]string{
		MonitorLabelAppCode:     app.AppCode,
		MonitorLabelModuleName:  app.ModuleName,
		MonitorLabelEnvironment: app.Environment,
	}
}
