package kube

// Stable label and annotation keys consumed by external systems. Do not
// rename: dashboards, log collectors and the in-cluster operator match on
// these values.
const (
	// LabelAppCode marks every resource of a platform app.
	LabelAppCode = "bkapp.paas.bk.tencent.com/code"
	// LabelModuleName marks the owning module.
	LabelModuleName = "bkapp.paas.bk.tencent.com/module-name"
	// LabelEnvironment marks the owning environment.
	LabelEnvironment = "bkapp.paas.bk.tencent.com/environment"
	// LabelWlAppName marks the owning workload app.
	LabelWlAppName = "bkapp.paas.bk.tencent.com/wl-app-name"
	// LabelSandboxID marks dev/agent sandbox resources.
	LabelSandboxID = "bkapp.paas.bk.tencent.com/sandbox-id"

	// AnnotationDeployID ties live resources to a Deployment row.
	AnnotationDeployID = "bkapp.paas.bk.tencent.com/deploy-id"

	// Monitoring sample labels stamped by ServiceMonitor relabelings.
	MonitorLabelAppCode     = "monitoring.bk.tencent.com/bk_app_code"
	MonitorLabelModuleName  = "monitoring.bk.tencent.com/module_name"
	MonitorLabelEnvironment = "monitoring.bk.tencent.com/environment"
)

// FieldManager identifies this platform's writes to the API server.
const FieldManager = "bkpaas-workloads"
