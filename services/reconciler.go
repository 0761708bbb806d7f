package services

import (
	"sdg-collector/models"
	"sdg-collector/utils"
)

// Reconciler compares the API's area codes with the reference mapping.
type Reconciler struct {
	logger *utils.Logger
}

func NewReconciler(logger *utils.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Reconcile returns the codes known to both sides and logs the overlap.
// An empty overlap is only a warning; the collector checks each area again.
func (r *Reconciler) Reconcile(areas []models.RemoteArea, mappings models.AreaMappings) *utils.CodeSet {
	remote := utils.NewCodeSet()
	for _, a := range areas {
		if code, ok := a.Code(); ok {
			remote.Add(code)
		}
	}

	known := utils.NewCodeSet()
	for code := range mappings {
		known.Add(code)
	}

	both := remote.Intersect(known)
	r.logger.Info("[reconciler] Mapping intersection: %d / %d CSV codes", both.Size(), known.Size())
	if both.Size() == 0 {
		r.logger.Warn("[reconciler] Intersection is empty, check that 'M49 Code' matches the API's geoAreaCode integers")
	}
	return both
}
