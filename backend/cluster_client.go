/*
 * backend/cluster_client.go
 *
 * Authenticated cluster access for the port forwarding manager.
 * - Builds a clientset plus REST config for a named kubeconfig context.
 * - Exposes the narrow surface the manager needs: pod listing, container port
 *   extraction, and per-connection port-forward streams.
 */

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/httpstream"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"
)

// ClusterClient binds one kubeconfig context to an authenticated API handle.
// The embedded clientset and REST config are safe for concurrent use, so a
// single client is shared across all supervisors.
type ClusterClient struct {
	contextName string
	clientset   kubernetes.Interface
	restConfig  *rest.Config
	requestID   atomic.Uint64
}

// NewClusterClient builds a client for the kubeconfig's current context.
func NewClusterClient() (*ClusterClient, error) {
	contextName, err := CurrentContextName()
	if err != nil {
		return nil, err
	}
	return NewClusterClientWithContext(contextName)
}

// NewClusterClientWithContext builds a client for the named context.
func NewClusterClientWithContext(contextName string) (*ClusterClient, error) {
	if err := ValidateContext(contextName); err != nil {
		return nil, err
	}

	config, err := buildRestConfig(contextName)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, wrapCoreError(ErrCluster, "failed to create clientset: "+err.Error(), err)
	}

	return &ClusterClient{
		contextName: contextName,
		clientset:   clientset,
		restConfig:  config,
	}, nil
}

// buildRestConfig loads a REST config for the resolved kubeconfig path and
// the given context.
func buildRestConfig(contextName string) (*rest.Config, error) {
	path, err := DefaultKubeconfigPath()
	if err != nil {
		return nil, err
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	loadingRules.ExplicitPath = path
	overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}

	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)
	config, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, wrapCoreError(ErrKubeconfig,
			fmt.Sprintf("failed to build config from %s: %v", path, err), err)
	}
	return config, nil
}

// CurrentContext returns the context this client was built for.
func (c *ClusterClient) CurrentContext() string {
	return c.contextName
}

// ListAllPods lists pods across all namespaces.
func (c *ClusterClient) ListAllPods(ctx context.Context) ([]corev1.Pod, error) {
	list, err := c.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapCoreError(ErrCluster, "failed to list pods: "+err.Error(), err)
	}
	return list.Items, nil
}

// ListPods lists pods in one namespace.
func (c *ClusterClient) ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	list, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapCoreError(ErrCluster,
			fmt.Sprintf("failed to list pods in namespace %s: %v", namespace, err), err)
	}
	return list.Items, nil
}

// GetPod fetches a single pod by name.
func (c *ClusterClient) GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, error) {
	pod, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, err
	}
	return pod, nil
}

// ExtractPodPorts maps container names to their declared container ports.
// Non-positive ports are dropped; containers with no valid ports are omitted.
func ExtractPodPorts(pod *corev1.Pod) map[string][]uint16 {
	portsByContainer := make(map[string][]uint16)
	for _, container := range pod.Spec.Containers {
		var ports []uint16
		for _, port := range container.Ports {
			if port.ContainerPort <= 0 || port.ContainerPort > 65535 {
				continue
			}
			ports = append(ports, uint16(port.ContainerPort))
		}
		if len(ports) > 0 {
			portsByContainer[container.Name] = ports
		}
	}
	return portsByContainer
}

// OpenPortForward dials a fresh SPDY connection to the pod's portforward
// subresource and returns a single bidirectional byte stream for remotePort.
// Each accepted local connection gets its own stream.
func (c *ClusterClient) OpenPortForward(ctx context.Context, namespace, pod string, remotePort uint16) (io.ReadWriteCloser, error) {
	if c.restConfig == nil {
		return nil, coreErrorf(ErrCluster, "kubernetes rest config not initialized")
	}

	req := c.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("portforward")

	transport, upgrader, err := spdy.RoundTripperFor(c.restConfig)
	if err != nil {
		return nil, wrapCoreError(ErrCluster, "failed to create SPDY transport: "+err.Error(), err)
	}

	dialer := spdy.NewDialer(upgrader, &http.Client{Transport: transport}, http.MethodPost, req.URL())
	streamConn, _, err := dialer.Dial(portforward.PortForwardProtocolV1Name)
	if err != nil {
		return nil, wrapCoreError(ErrCluster,
			fmt.Sprintf("failed to dial port forward for %s/%s: %v", namespace, pod, err), err)
	}

	portStr := strconv.FormatUint(uint64(remotePort), 10)
	requestID := strconv.FormatUint(c.requestID.Add(1), 10)

	errorHeaders := http.Header{}
	errorHeaders.Set(corev1.StreamType, corev1.StreamTypeError)
	errorHeaders.Set(corev1.PortHeader, portStr)
	errorHeaders.Set(corev1.PortForwardRequestIDHeader, requestID)

	errorStream, err := streamConn.CreateStream(errorHeaders)
	if err != nil {
		streamConn.Close()
		return nil, wrapCoreError(ErrConnection, "failed to create error stream: "+err.Error(), err)
	}

	dataHeaders := http.Header{}
	dataHeaders.Set(corev1.StreamType, corev1.StreamTypeData)
	dataHeaders.Set(corev1.PortHeader, portStr)
	dataHeaders.Set(corev1.PortForwardRequestIDHeader, requestID)

	dataStream, err := streamConn.CreateStream(dataHeaders)
	if err != nil {
		streamConn.Close()
		return nil, wrapCoreError(ErrConnection, "failed to create data stream: "+err.Error(), err)
	}

	stream := &portForwardStream{
		conn: streamConn,
		data: dataStream,
	}

	// The kubelet reports forwarding failures on the error stream. Tear the
	// whole stream down when anything arrives so the copy pumps unblock.
	go stream.watchErrorStream(errorStream)

	return stream, nil
}

// portForwardStream is one bidirectional data stream plus its owning SPDY
// connection. Closing the stream closes the connection.
type portForwardStream struct {
	conn      httpstream.Connection
	data      httpstream.Stream
	closeOnce sync.Once
	remoteErr atomic.Pointer[string]
}

func (s *portForwardStream) Read(p []byte) (int, error) {
	n, err := s.data.Read(p)
	if err != nil {
		if msg := s.remoteErr.Load(); msg != nil {
			return n, coreErrorf(ErrConnection, "%s", *msg)
		}
	}
	return n, err
}

func (s *portForwardStream) Write(p []byte) (int, error) {
	return s.data.Write(p)
}

func (s *portForwardStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.data.Reset()
		err = s.conn.Close()
	})
	return err
}

func (s *portForwardStream) watchErrorStream(errorStream httpstream.Stream) {
	msg, _ := io.ReadAll(errorStream)
	if len(msg) > 0 {
		text := string(msg)
		s.remoteErr.Store(&text)
		s.Close()
	}
}
