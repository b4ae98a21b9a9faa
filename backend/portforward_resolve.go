/*
 * backend/portforward_resolve.go
 *
 * Pod name resolution for the port forwarding manager.
 * - Tries an exact pod name first, then falls back to prefix matching so a
 *   config can name a deployment's stable prefix instead of a hashed pod.
 */

package backend

import (
	"context"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// resolvePodName resolves a configured pod name against live pods in the
// namespace. An exact match wins; otherwise the first listed pod whose name
// starts with the configured value is used.
func resolvePodName(
	ctx context.Context,
	client kubernetes.Interface,
	namespace, podName string,
) (string, error) {
	_, err := client.CoreV1().Pods(namespace).Get(ctx, podName, metav1.GetOptions{})
	if err == nil {
		return podName, nil
	}

	pods, err := client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", wrapCoreError(ErrCluster,
			"failed to list pods in namespace "+namespace+": "+err.Error(), err)
	}

	for i := range pods.Items {
		if strings.HasPrefix(pods.Items[i].Name, podName) {
			return pods.Items[i].Name, nil
		}
	}

	return "", coreErrorf(ErrPortForwarding,
		"Pod %s not found in namespace %s (no exact or prefix match)", podName, namespace)
}
