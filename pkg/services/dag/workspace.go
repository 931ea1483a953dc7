package dag

import (
	"slices"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

// Workspace is the in-memory state one generation run builds up node by
// node. It holds the run's only random source and enrollment id counter.
type Workspace struct {
	Source  *sampling.Source
	IDs     *models.IDCounter
	Catalog *models.Catalog
	Dataset *models.Dataset

	StudentCount      int
	FirstStudentSeq   int
	EnrichPreferences bool

	// cohortStart is the index in Dataset.Students where the students
	// admitted by this run begin. Earlier rows belong to the base dataset.
	cohortStart int
}

// WorkspaceOptions configures a new workspace.
type WorkspaceOptions struct {
	RunID             uuid.UUID
	Seed              uint64
	StudentCount      int
	EnrichPreferences bool

	// Base is an existing dataset the run appends to. Its offerings,
	// students, enrollments and preferences are carried over unchanged.
	Base *models.Dataset

	// IDs continues an existing ledger. A fresh counter is used when nil.
	IDs *models.IDCounter

	// FirstStudentSeq numbers the admitted cohort. Zero means 1.
	FirstStudentSeq int
}

// NewWorkspace creates a workspace seeded for one run.
func NewWorkspace(opts WorkspaceOptions) *Workspace {
	ids := opts.IDs
	if ids == nil {
		ids = models.NewIDCounter()
	}
	firstStudent := opts.FirstStudentSeq
	if firstStudent < 1 {
		firstStudent = 1
	}

	ds := &models.Dataset{RunID: opts.RunID, Seed: opts.Seed, FirstEnrollmentSeq: ids.Peek()}
	cohortStart := 0
	if base := opts.Base; base != nil {
		ds.Offerings = slices.Clone(base.Offerings)
		ds.Students = slices.Clone(base.Students)
		ds.Enrollments = slices.Clone(base.Enrollments)
		ds.Preferences = slices.Clone(base.Preferences)
		if len(base.Enrollments) > 0 {
			ds.FirstEnrollmentSeq = base.LedgerStart()
		}
		cohortStart = len(base.Students)
	}

	return &Workspace{
		Source:            sampling.New(opts.Seed),
		IDs:               ids,
		Dataset:           ds,
		StudentCount:      opts.StudentCount,
		FirstStudentSeq:   firstStudent,
		EnrichPreferences: opts.EnrichPreferences,
		cohortStart:       cohortStart,
	}
}

// Cohort returns the students admitted by this run.
func (ws *Workspace) Cohort() []models.Student {
	return ws.Dataset.Students[ws.cohortStart:]
}
