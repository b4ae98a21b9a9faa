package backend

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestNewClusterClientWithContext(t *testing.T) {
	useTestKubeconfig(t)

	client, err := NewClusterClientWithContext("prod")
	if err != nil {
		t.Fatalf("NewClusterClientWithContext: %v", err)
	}
	if client.CurrentContext() != "prod" {
		t.Fatalf("context = %q", client.CurrentContext())
	}
	if client.restConfig.Host != "https://127.0.0.1:6444" {
		t.Fatalf("host = %q", client.restConfig.Host)
	}
}

func TestNewClusterClientUsesCurrentContext(t *testing.T) {
	useTestKubeconfig(t)

	client, err := NewClusterClient()
	if err != nil {
		t.Fatalf("NewClusterClient: %v", err)
	}
	if client.CurrentContext() != "dev" {
		t.Fatalf("context = %q", client.CurrentContext())
	}
}

func TestNewClusterClientUnknownContext(t *testing.T) {
	useTestKubeconfig(t)

	_, err := NewClusterClientWithContext("staging")
	if !IsContextNotFound(err) {
		t.Fatalf("expected context not found, got %v", err)
	}
}

func TestListPods(t *testing.T) {
	client := &ClusterClient{
		contextName: "test",
		clientset:   fake.NewClientset(testPod("default", "api"), testPod("other", "worker")),
	}

	pods, err := client.ListPods(context.Background(), "default")
	if err != nil {
		t.Fatalf("ListPods: %v", err)
	}
	if len(pods) != 1 || pods[0].Name != "api" {
		t.Fatalf("pods = %+v", pods)
	}

	all, err := client.ListAllPods(context.Background())
	if err != nil {
		t.Fatalf("ListAllPods: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all pods = %d", len(all))
	}
}

func TestExtractPodPorts(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "api", Namespace: "default"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name: "server",
					Ports: []corev1.ContainerPort{
						{ContainerPort: 8080},
						{ContainerPort: 9090},
						{ContainerPort: 0},
					},
				},
				{
					Name:  "sidecar",
					Ports: []corev1.ContainerPort{{ContainerPort: -1}},
				},
				{Name: "no-ports"},
			},
		},
	}

	ports := ExtractPodPorts(pod)
	if len(ports) != 1 {
		t.Fatalf("containers with ports = %d", len(ports))
	}
	server := ports["server"]
	if len(server) != 2 || server[0] != 8080 || server[1] != 9090 {
		t.Fatalf("server ports = %v", server)
	}
}

func TestOpenPortForwardRequiresRestConfig(t *testing.T) {
	client := &ClusterClient{contextName: "test", clientset: fake.NewClientset()}
	_, err := client.OpenPortForward(context.Background(), "default", "api", 8080)
	if err == nil {
		t.Fatal("expected error without rest config")
	}
	if kind, ok := CoreErrorKindOf(err); !ok || kind != ErrCluster {
		t.Fatalf("unexpected error: %v", err)
	}
}
