package controllers

import (
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	depresolvev1alpha1 "github.com/bayleafwalker/depresolve/api/v1alpha1"
)

const (
	ResolutionConditionResolved   = "Resolved"
	ResolutionConditionNoConflict = "NoConflict"
)

func setResolutionCondition(req *depresolvev1alpha1.ResolutionRequest, condition metav1.Condition) {
	if req == nil {
		return
	}
	condition.ObservedGeneration = req.Generation
	meta.SetStatusCondition(&req.Status.Conditions, condition)
}
