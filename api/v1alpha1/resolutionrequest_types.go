package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// ResolutionRequest asks the resolver engine to resolve a single root
// library range against a configured provider chain and records the
// resulting accepted set and diagnostics in status.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=resreq
// +kubebuilder:printcolumn:name="Target",type=string,JSONPath=`.spec.target.name`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type ResolutionRequest struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ResolutionRequestSpec   `json:"spec"`
	Status ResolutionRequestStatus `json:"status,omitempty"`
}

// ResolutionRequestSpec describes what to resolve and against which
// registries.
type ResolutionRequestSpec struct {
	// Target is the root library range to resolve, e.g. name "Widgets.Core"
	// with range "[1.2.0,2.0.0)".
	Target LibraryRangeRef `json:"target"`

	// Framework is the target framework moniker the resolution is scoped
	// to, e.g. "net8.0".
	Framework string `json:"framework,omitempty"`

	// RuntimeID restricts resolution to a runtime-specific asset graph,
	// e.g. "linux-x64". Empty means runtime-agnostic.
	RuntimeID string `json:"runtimeId,omitempty"`

	// ProviderRefs names the registered providers, in priority order, that
	// should be raced for this request. Empty means "all configured
	// providers, in their default order".
	ProviderRefs []string `json:"providerRefs,omitempty"`

	// DependencyBehavior selects how the combinatorial fallback resolver
	// should pick among otherwise-equal candidates. One of Lowest,
	// HighestPatch, HighestMinor, Highest, Ignore. Defaults to Lowest.
	// +kubebuilder:validation:Enum=Lowest;HighestPatch;HighestMinor;Highest;Ignore
	DependencyBehavior string `json:"dependencyBehavior,omitempty"`
}

// LibraryRangeRef is the serialized form of a model.LibraryRange.
type LibraryRangeRef struct {
	Name  string `json:"name"`
	Range string `json:"range"`
}

// ResolutionRequestStatus records the outcome of the most recent
// resolution attempt.
type ResolutionRequestStatus struct {
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// Phase summarizes the outcome: Pending, Resolved, Conflicted, Error.
	Phase string `json:"phase,omitempty"`

	// Accepted lists the identities the resolver kept, name-sorted when they
	// come from the graph, or dependencies-first when the combinatorial
	// fallback produced them.
	Accepted []ResolvedIdentity `json:"accepted,omitempty"`

	// DiagnosticsSummary is the human-readable primary cause, if any.
	DiagnosticsSummary string `json:"diagnosticsSummary,omitempty"`

	// Causes lists every diagnosable issue found during resolution,
	// ordered by severity.
	Causes []string `json:"causes,omitempty"`

	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// ResolvedIdentity is the serialized form of a model.Identity.
type ResolvedIdentity struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Kind    string `json:"kind,omitempty"`
}

// +kubebuilder:object:root=true
type ResolutionRequestList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ResolutionRequest `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ResolutionRequest{}, &ResolutionRequestList{})
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ResolutionRequest) DeepCopyInto(out *ResolutionRequest) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy copies the receiver, creating a new ResolutionRequest.
func (in *ResolutionRequest) DeepCopy() *ResolutionRequest {
	if in == nil {
		return nil
	}
	out := new(ResolutionRequest)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *ResolutionRequest) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ResolutionRequestList) DeepCopyInto(out *ResolutionRequestList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]ResolutionRequest, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy copies the receiver, creating a new ResolutionRequestList.
func (in *ResolutionRequestList) DeepCopy() *ResolutionRequestList {
	if in == nil {
		return nil
	}
	out := new(ResolutionRequestList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *ResolutionRequestList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ResolutionRequestSpec) DeepCopyInto(out *ResolutionRequestSpec) {
	*out = *in
	out.Target = in.Target
	if in.ProviderRefs != nil {
		out.ProviderRefs = make([]string, len(in.ProviderRefs))
		copy(out.ProviderRefs, in.ProviderRefs)
	}
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ResolutionRequestStatus) DeepCopyInto(out *ResolutionRequestStatus) {
	*out = *in
	if in.Accepted != nil {
		out.Accepted = make([]ResolvedIdentity, len(in.Accepted))
		copy(out.Accepted, in.Accepted)
	}
	if in.Causes != nil {
		out.Causes = make([]string, len(in.Causes))
		copy(out.Causes, in.Causes)
	}
	if in.Conditions != nil {
		out.Conditions = make([]metav1.Condition, len(in.Conditions))
		for i := range in.Conditions {
			in.Conditions[i].DeepCopyInto(&out.Conditions[i])
		}
	}
}
