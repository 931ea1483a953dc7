package services

import (
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/services/dag"
)

// The dag package declares the narrow method sets its nodes need so it never
// imports services. Most services satisfy them directly; the assertions below
// keep the two packages in step.
var (
	_ dag.CatalogBuildMethods           = (CatalogService)(nil)
	_ dag.OfferingScheduleMethods       = (OfferingService)(nil)
	_ dag.StudentPopulationMethods      = (PopulationService)(nil)
	_ dag.EnrollmentSimulationMethods   = (EnrollmentService)(nil)
	_ dag.PerformanceAggregationMethods = (PerformanceService)(nil)
	_ dag.PreferenceGenerationMethods   = (PreferenceService)(nil)
	_ dag.DatasetValidationMethods      = ValidatorFunc(nil)
)

// ValidatorFunc adapts a plain validation function for the dag package.
type ValidatorFunc func(ds *models.Dataset) error

// ValidateDataset calls f(ds).
func (f ValidatorFunc) ValidateDataset(ds *models.Dataset) error {
	return f(ds)
}
