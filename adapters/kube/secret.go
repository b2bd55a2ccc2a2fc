package kube

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/naming"
)

// BuildTLSSecret renders the TLS Secret materialising one certificate in
// an app namespace. The name is deterministic per certificate, so every
// ingress of the namespace shares one Secret and re-renders are idempotent.
func BuildTLSSecret(namespace, certName, certData, keyData string, appLabels map[string]string) *corev1.Secret {
	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.CertSecretName(certName),
			Namespace: namespace,
			Labels:    appLabels,
		},
		Type: corev1.SecretTypeTLS,
		StringData: map[string]string{
			corev1.TLSCertKey:       certData,
			corev1.TLSPrivateKeyKey: keyData,
		},
	}
}

// RegistryCredential is one registry auth entry of a dockerconfigjson
// payload.
type RegistryCredential struct {
	Registry string
	Username string
	Password string
}

// BuildImagePullSecret renders the per-namespace image-pull Secret from
// app credentials merged with the cluster's built-in registry credential
// (already filtered by the caller).
func BuildImagePullSecret(app *model.WlApp, credentials []RegistryCredential) (*corev1.Secret, error) {
	auths := map[string]any{}
	for _, c := range credentials {
		auths[c.Registry] = map[string]string{
			"username": c.Username,
			"password": c.Password,
			"auth":     base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password)),
		}
	}
	payload, err := json.Marshal(map[string]any{"auths": auths})
	if err != nil {
		return nil, fmt.Errorf("encode dockerconfigjson: %w", err)
	}
	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.ImagePullSecretName(app.Name),
			Namespace: app.Namespace(),
			Labels: map[string]string{
				LabelWlAppName: app.SchedulerSafeName(),
				LabelAppCode:   naming.DNSSafe(app.AppCode),
			},
		},
		Type: corev1.SecretTypeDockerConfigJson,
		Data: map[string][]byte{
			corev1.DockerConfigJsonKey: payload,
		},
	}, nil
}
