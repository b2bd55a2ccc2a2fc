package kube

import (
	"context"
	"encoding/json"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/dynamic"

	"github.com/bkpaas/workloads/crd/monitoringv1"
	"github.com/bkpaas/workloads/crd/paasv1alpha2"
	"github.com/bkpaas/workloads/domain/model"
)

// ResourceType describes one Kubernetes kind the entity framework manages.
type ResourceType struct {
	GVR        schema.GroupVersionResource
	APIVersion string
	Kind       string
	// UseMergePatch switches updates from strategic-merge-patch to plain
	// merge-patch; custom resources do not support strategic merge.
	UseMergePatch bool
}

// Managed resource types.
var (
	TypePod = ResourceType{
		GVR:        schema.GroupVersionResource{Version: "v1", Resource: "pods"},
		APIVersion: "v1", Kind: "Pod",
	}
	TypeDeployment = ResourceType{
		GVR:        schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "deployments"},
		APIVersion: "apps/v1", Kind: "Deployment",
	}
	TypeService = ResourceType{
		GVR:        schema.GroupVersionResource{Version: "v1", Resource: "services"},
		APIVersion: "v1", Kind: "Service",
	}
	TypeIngress = ResourceType{
		GVR:        schema.GroupVersionResource{Group: "networking.k8s.io", Version: "v1", Resource: "ingresses"},
		APIVersion: "networking.k8s.io/v1", Kind: "Ingress",
	}
	TypeSecret = ResourceType{
		GVR:        schema.GroupVersionResource{Version: "v1", Resource: "secrets"},
		APIVersion: "v1", Kind: "Secret",
	}
	TypeBkApp = ResourceType{
		GVR:           schema.GroupVersionResource{Group: paasv1alpha2.Group, Version: paasv1alpha2.Version, Resource: "bkapps"},
		APIVersion:    paasv1alpha2.APIVersion,
		Kind:          paasv1alpha2.KindBkApp,
		UseMergePatch: true,
	}
	TypeDomainGroupMapping = ResourceType{
		GVR:           schema.GroupVersionResource{Group: paasv1alpha2.Group, Version: paasv1alpha2.Version, Resource: "domaingroupmappings"},
		APIVersion:    paasv1alpha2.APIVersion,
		Kind:          paasv1alpha2.KindDomainGroupMapping,
		UseMergePatch: true,
	}
	TypeServiceMonitor = ResourceType{
		GVR:           schema.GroupVersionResource{Group: monitoringv1.Group, Version: monitoringv1.Version, Resource: "servicemonitors"},
		APIVersion:    monitoringv1.APIVersion,
		Kind:          monitoringv1.KindServiceMonitor,
		UseMergePatch: true,
	}
)

// UpdateMethod selects how Update writes an object.
type UpdateMethod string

const (
	UpdatePatch   UpdateMethod = "patch"
	UpdateReplace UpdateMethod = "replace"
)

// EntityManager is the generic bridge between typed in-memory entities and
// one Kubernetes resource kind. Callers render bodies as unstructured
// objects; the manager owns create/read/update/delete semantics.
type EntityManager struct {
	client *Client
	typ    ResourceType
}

// NewEntityManager binds a resource type to a cluster client.
func NewEntityManager(client *Client, typ ResourceType) *EntityManager {
	return &EntityManager{client: client, typ: typ}
}

// Get reads one object, mapping 404 to model.ErrAppEntityNotFound.
func (m *EntityManager) Get(ctx context.Context, namespace, name string) (*unstructured.Unstructured, error) {
	var out *unstructured.Unstructured
	err := m.client.DoDynamic(ctx, func(dy dynamic.Interface) error {
		obj, err := dy.Resource(m.typ.GVR).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return err
		}
		out = obj
		return nil
	})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s %s/%s", model.ErrAppEntityNotFound, m.typ.Kind, namespace, name)
		}
		return nil, err
	}
	return out, nil
}

// ListByApp lists objects in the app's namespace carrying the app label
// plus any extra selector labels.
func (m *EntityManager) ListByApp(ctx context.Context, app *model.WlApp, extraSelector map[string]string) (*unstructured.UnstructuredList, error) {
	selector := map[string]string{LabelWlAppName: app.SchedulerSafeName()}
	for k, v := range extraSelector {
		selector[k] = v
	}
	var out *unstructured.UnstructuredList
	err := m.client.DoDynamic(ctx, func(dy dynamic.Interface) error {
		list, err := dy.Resource(m.typ.GVR).Namespace(app.Namespace()).List(ctx, metav1.ListOptions{
			LabelSelector: selectorString(selector),
		})
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	return out, err
}

// Save creates the object or patches the existing one. The patch carries
// the full desired body, so a second Save with identical content is a
// server-side no-op.
func (m *EntityManager) Save(ctx context.Context, obj *unstructured.Unstructured) error {
	m.stampTypeMeta(obj)
	return m.client.DoDynamic(ctx, func(dy dynamic.Interface) error {
		ns := obj.GetNamespace()
		_, err := dy.Resource(m.typ.GVR).Namespace(ns).Get(ctx, obj.GetName(), metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			_, err = dy.Resource(m.typ.GVR).Namespace(ns).Create(ctx, obj, metav1.CreateOptions{FieldManager: FieldManager})
			if apierrors.IsAlreadyExists(err) {
				return m.patch(ctx, dy, obj)
			}
			return err
		}
		if err != nil {
			return err
		}
		return m.patch(ctx, dy, obj)
	})
}

// Update writes an already-rendered object with the chosen method,
// mapping 409 to model.ErrConflict.
func (m *EntityManager) Update(ctx context.Context, obj *unstructured.Unstructured, method UpdateMethod) error {
	m.stampTypeMeta(obj)
	err := m.client.DoDynamic(ctx, func(dy dynamic.Interface) error {
		switch method {
		case UpdateReplace:
			_, err := dy.Resource(m.typ.GVR).Namespace(obj.GetNamespace()).Update(ctx, obj, metav1.UpdateOptions{FieldManager: FieldManager})
			return err
		default:
			return m.patch(ctx, dy, obj)
		}
	})
	if apierrors.IsConflict(err) {
		return fmt.Errorf("%w: %s %s/%s", model.ErrConflict, m.typ.Kind, obj.GetNamespace(), obj.GetName())
	}
	return err
}

// Delete removes one object, tolerating 404.
func (m *EntityManager) Delete(ctx context.Context, namespace, name string, gracePeriodSeconds *int64) error {
	err := m.client.DoDynamic(ctx, func(dy dynamic.Interface) error {
		return dy.Resource(m.typ.GVR).Namespace(namespace).Delete(ctx, name, metav1.DeleteOptions{
			GracePeriodSeconds: gracePeriodSeconds,
		})
	})
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}

// Watch opens a watch on the app's namespace from a resource version.
func (m *EntityManager) Watch(ctx context.Context, app *model.WlApp, extraSelector map[string]string, resourceVersion string) (watch.Interface, error) {
	selector := map[string]string{LabelWlAppName: app.SchedulerSafeName()}
	for k, v := range extraSelector {
		selector[k] = v
	}
	var out watch.Interface
	err := m.client.DoDynamic(ctx, func(dy dynamic.Interface) error {
		w, err := dy.Resource(m.typ.GVR).Namespace(app.Namespace()).Watch(ctx, metav1.ListOptions{
			LabelSelector:   selectorString(selector),
			ResourceVersion: resourceVersion,
			Watch:           true,
		})
		if err != nil {
			return err
		}
		out = w
		return nil
	})
	return out, err
}

func (m *EntityManager) patch(ctx context.Context, dy dynamic.Interface, obj *unstructured.Unstructured) error {
	body, err := json.Marshal(obj.Object)
	if err != nil {
		return err
	}
	patchType := types.StrategicMergePatchType
	if m.typ.UseMergePatch {
		patchType = types.MergePatchType
	}
	_, err = dy.Resource(m.typ.GVR).Namespace(obj.GetNamespace()).Patch(
		ctx, obj.GetName(), patchType, body, metav1.PatchOptions{FieldManager: FieldManager})
	return err
}

func (m *EntityManager) stampTypeMeta(obj *unstructured.Unstructured) {
	obj.SetAPIVersion(m.typ.APIVersion)
	obj.SetKind(m.typ.Kind)
}

// selectorString renders a label map as a deterministic selector.
func selectorString(selector map[string]string) string {
	return labels.SelectorFromSet(selector).String()
}
