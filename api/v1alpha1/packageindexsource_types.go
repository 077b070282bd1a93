package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// PackageIndexSourceType names which concrete provider a PackageIndexSource
// configures.
type PackageIndexSourceType string

const (
	PackageIndexSourceLocal PackageIndexSourceType = "Local"
	PackageIndexSourceHTTP  PackageIndexSourceType = "HTTP"
	PackageIndexSourceGRPC  PackageIndexSourceType = "GRPC"
)

// PackageIndexSource declares one provider a ResolutionRequest can race
// against, by name, instead of relying on the operator's static
// command-line provider chain.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=pis
// +kubebuilder:printcolumn:name="Type",type=string,JSONPath=`.spec.type`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type PackageIndexSource struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   PackageIndexSourceSpec   `json:"spec"`
	Status PackageIndexSourceStatus `json:"status,omitempty"`
}

type PackageIndexSourceSpec struct {
	// Type selects which provider implementation this source configures.
	// +kubebuilder:validation:Enum=Local;HTTP;GRPC
	Type PackageIndexSourceType `json:"type"`

	// LocalPath is the path to a JSON package index, mounted into the
	// operator's pod. Required when Type is Local.
	LocalPath string `json:"localPath,omitempty"`

	// HTTPBaseURL is the base URL of an HTTP registry feed. Required when
	// Type is HTTP.
	HTTPBaseURL string `json:"httpBaseURL,omitempty"`

	// GRPCAddress is the dial target of a gRPC registry service. Required
	// when Type is GRPC.
	GRPCAddress string `json:"grpcAddress,omitempty"`
}

type PackageIndexSourceStatus struct {
	ObservedGeneration int64  `json:"observedGeneration,omitempty"`
	Phase              string `json:"phase,omitempty"`
	Message            string `json:"message,omitempty"`

	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
type PackageIndexSourceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []PackageIndexSource `json:"items"`
}

func init() {
	SchemeBuilder.Register(&PackageIndexSource{}, &PackageIndexSourceList{})
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *PackageIndexSource) DeepCopyInto(out *PackageIndexSource) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = in.Spec
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy copies the receiver, creating a new PackageIndexSource.
func (in *PackageIndexSource) DeepCopy() *PackageIndexSource {
	if in == nil {
		return nil
	}
	out := new(PackageIndexSource)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *PackageIndexSource) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *PackageIndexSourceList) DeepCopyInto(out *PackageIndexSourceList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]PackageIndexSource, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy copies the receiver, creating a new PackageIndexSourceList.
func (in *PackageIndexSourceList) DeepCopy() *PackageIndexSourceList {
	if in == nil {
		return nil
	}
	out := new(PackageIndexSourceList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *PackageIndexSourceList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *PackageIndexSourceStatus) DeepCopyInto(out *PackageIndexSourceStatus) {
	*out = *in
	if in.Conditions != nil {
		out.Conditions = make([]metav1.Condition, len(in.Conditions))
		for i := range in.Conditions {
			in.Conditions[i].DeepCopyInto(&out.Conditions[i])
		}
	}
}
