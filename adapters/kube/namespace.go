package kube

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"

	"github.com/bkpaas/workloads/domain/model"
)

// EnsureNamespace creates the namespace when absent, reporting whether it
// was freshly created.
func (c *Client) EnsureNamespace(ctx context.Context, namespace string) (created bool, err error) {
	err = c.Do(ctx, func(cs kubernetes.Interface) error {
		_, err := cs.CoreV1().Namespaces().Get(ctx, namespace, metav1.GetOptions{})
		if err == nil {
			return nil
		}
		if !apierrors.IsNotFound(err) {
			return err
		}
		_, err = cs.CoreV1().Namespaces().Create(ctx, &corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{Name: namespace},
		}, metav1.CreateOptions{})
		if apierrors.IsAlreadyExists(err) {
			return nil
		}
		if err == nil {
			created = true
		}
		return err
	})
	return created, err
}

// WaitDefaultServiceAccount blocks until the namespace's default
// ServiceAccount exists. Freshly created namespaces must pass this gate
// before pods are scheduled, otherwise pod creation races the
// serviceaccount controller. Token Secrets are not awaited: clusters on
// 1.24+ no longer auto-create them, pods mount projected tokens instead.
// Expiry fails with model.ErrServiceAccountNotReady.
func (c *Client) WaitDefaultServiceAccount(ctx context.Context, namespace string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := wait.PollUntilContextCancel(waitCtx, time.Second, true, func(ctx context.Context) (bool, error) {
		var ready bool
		err := c.Do(ctx, func(cs kubernetes.Interface) error {
			sa, err := cs.CoreV1().ServiceAccounts(namespace).Get(ctx, "default", metav1.GetOptions{})
			if apierrors.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			ready = sa != nil
			return nil
		})
		return ready, err
	})
	if err != nil {
		if waitCtx.Err() != nil {
			return fmt.Errorf("%w: namespace %s", model.ErrServiceAccountNotReady, namespace)
		}
		return err
	}
	return nil
}

// DeleteNamespace removes the namespace, tolerating 404.
func (c *Client) DeleteNamespace(ctx context.Context, namespace string) error {
	err := c.Do(ctx, func(cs kubernetes.Interface) error {
		return cs.CoreV1().Namespaces().Delete(ctx, namespace, metav1.DeleteOptions{})
	})
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}
