package fsops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/rs/zerolog"

	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/types"
)

// Options contains options for the executor.
type Options struct {
	// DryRun logs the plan instead of executing it.
	DryRun bool

	// NoRollback disables undoing completed operations when a later
	// one fails. Rollback is on by default.
	NoRollback bool
}

// Executor runs batches of filesystem operations through synthfs.
// A failing batch rolls back the operations that already completed, so
// callers observe all-or-nothing behavior.
type Executor struct {
	logger     zerolog.Logger
	dryRun     bool
	rollback   bool
	filesystem filesystem.FullFileSystem
}

// New creates an executor rooted at the real filesystem.
func New(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}

	// PathAwareFileSystem handles absolute paths directly
	osfs := filesystem.NewOSFileSystem("/")
	pathAwareFS := synthfs.NewPathAwareFileSystem(osfs, "/").WithAbsolutePaths()

	return &Executor{
		logger:     logging.GetLogger("fsops"),
		dryRun:     opts.DryRun,
		rollback:   !opts.NoRollback,
		filesystem: pathAwareFS,
	}
}

// OperationResult reports the outcome of one operation.
type OperationResult struct {
	Operation types.Operation
	Status    types.OperationStatus
	Error     error
	Duration  time.Duration
}

// Execute runs the operations in order. On failure the returned error
// carries DEST_COLLISION when the underlying cause is an existing
// target, and the per-operation results identify the offender.
func (e *Executor) Execute(ops []types.Operation) ([]OperationResult, error) {
	if len(ops) == 0 {
		return []OperationResult{}, nil
	}

	e.logger.Debug().Int("operationCount", len(ops)).Msg("Executing operations")

	if e.dryRun {
		return e.executeDryRun(ops), nil
	}

	sfs := synthfs.New()
	ctx := context.Background()

	synthfsOps := make([]synthfs.Operation, 0, len(ops))
	opMap := make(map[synthfs.OperationID]*types.Operation, len(ops))

	for i := range ops {
		op := &ops[i]
		if err := validateOperation(*op); err != nil {
			return nil, err
		}

		converted, err := e.convertOperation(sfs, i, *op)
		if err != nil {
			return nil, err
		}
		synthfsOps = append(synthfsOps, converted)
		opMap[converted.ID()] = op
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = e.rollback

	result, err := synthfs.RunWithOptions(ctx, e.filesystem, options, synthfsOps...)

	results := e.convertResults(result, opMap)

	if err != nil {
		return results, e.mapExecuteError(err, results)
	}

	e.logger.Debug().Msg("All operations executed")
	return results, nil
}

// convertOperation converts one operation to its synthfs form. The
// index keeps generated IDs unique within the batch.
func (e *Executor) convertOperation(sfs *synthfs.SynthFS, index int, op types.Operation) (synthfs.Operation, error) {
	id := fmt.Sprintf("%s_%d_%s", op.Type, index, filepath.Base(op.Target))

	switch op.Type {
	case types.OperationCreateDir:
		return sfs.CreateDirWithID(id, op.Target, 0755), nil
	case types.OperationCreateSymlink:
		return sfs.CreateSymlinkWithID(id, op.Source, op.Target), nil
	case types.OperationCopyFile:
		return sfs.CopyWithID(id, op.Source, op.Target), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown operation type: %s", op.Type)
	}
}

func validateOperation(op types.Operation) error {
	if op.Target == "" {
		return errors.Newf(errors.ErrInvalidInput,
			"%s operation requires a target", op.Type)
	}
	switch op.Type {
	case types.OperationCreateSymlink, types.OperationCopyFile:
		if op.Source == "" {
			return errors.Newf(errors.ErrInvalidInput,
				"%s operation requires a source", op.Type)
		}
	}
	return nil
}

// executeDryRun logs what would happen.
func (e *Executor) executeDryRun(ops []types.Operation) []OperationResult {
	e.logger.Info().Msg("Dry run mode - operations that would execute:")
	results := make([]OperationResult, len(ops))

	for i, op := range ops {
		e.logOperation(op)
		results[i] = OperationResult{Operation: op, Status: types.StatusReady}
	}
	return results
}

func (e *Executor) logOperation(op types.Operation) {
	logger := e.logger.With().Str("target", op.Target).Logger()

	switch op.Type {
	case types.OperationCreateDir:
		logger.Info().Msg("Would create directory")
	case types.OperationCreateSymlink:
		logger.Info().Str("source", op.Source).Msg("Would create symlink")
	case types.OperationCopyFile:
		logger.Info().Str("source", op.Source).Msg("Would copy file")
	default:
		logger.Info().Msg("Would execute operation")
	}
}

// convertResults maps synthfs results back onto the input operations.
func (e *Executor) convertResults(result *synthfs.Result, opMap map[synthfs.OperationID]*types.Operation) []OperationResult {
	if result == nil {
		return []OperationResult{}
	}

	var results []OperationResult
	for _, opResult := range result.GetOperations() {
		synthfsResult, ok := opResult.(synthfs.OperationResult)
		if !ok {
			continue
		}

		op, exists := opMap[synthfsResult.OperationID]
		if !exists {
			e.logger.Warn().
				Str("operationID", string(synthfsResult.OperationID)).
				Msg("Could not find operation for synthfs result")
			continue
		}

		status := types.StatusReady
		switch synthfsResult.Status {
		case synthfs.StatusSuccess:
			status = types.StatusReady
		case synthfs.StatusFailure, synthfs.StatusValidation:
			status = types.StatusError
			if isExistsError(synthfsResult.Error) {
				status = types.StatusConflict
			}
		}

		results = append(results, OperationResult{
			Operation: *op,
			Status:    status,
			Error:     synthfsResult.Error,
			Duration:  synthfsResult.Duration,
		})
	}
	return results
}

// mapExecuteError wraps a batch failure with the right code: a
// collision when any operation hit an existing target, the failing
// operation's kind otherwise.
func (e *Executor) mapExecuteError(err error, results []OperationResult) error {
	var failed *OperationResult
	for i := range results {
		if results[i].Status == types.StatusConflict {
			return errors.Wrapf(err, errors.ErrDestCollision,
				"destination already exists: %s", results[i].Operation.Target).
				WithDetail("target", results[i].Operation.Target)
		}
		if results[i].Status == types.StatusError && failed == nil {
			failed = &results[i]
		}
	}

	if isExistsError(err) {
		return errors.Wrap(err, errors.ErrDestCollision, "destination already exists")
	}

	if failed != nil {
		code := errors.ErrFileCreate
		switch failed.Operation.Type {
		case types.OperationCreateDir:
			code = errors.ErrDirCreate
		case types.OperationCreateSymlink:
			code = errors.ErrSymlinkCreate
		}
		return errors.Wrapf(err, code, "operation failed: %s", failed.Operation.Target).
			WithDetail("target", failed.Operation.Target)
	}

	return errors.Wrap(err, errors.ErrInternal, "failed to execute operations")
}

func isExistsError(err error) bool {
	if err == nil {
		return false
	}
	if os.IsExist(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "file exists")
}
