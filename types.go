package resilient

import (
	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage"
)

type (
	// Record is a persisted failure report.
	Record = domain.Record
	// Dump is the reported set of variables.
	Dump = domain.Dump
	// Var is one reported variable.
	Var = domain.Var
	// Exception describes the failure that exhausted the attempts.
	Exception = domain.Exception
	// DumpStore persists failure reports.
	DumpStore = storage.DumpWriter
)
