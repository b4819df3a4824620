package conflict

import "stepsync/internal/domain/submission"

// DefaultPolicy предлагает действие клиенту. Решение клиента всегда приоритетнее.
type DefaultPolicy func(existing submission.Snapshot, c Candidate) Action

// SmartDefault входящее с доказательством вытесняет запись без доказательства,
// в остальных случаях сохраняется существующая запись.
func SmartDefault(existing submission.Snapshot, c Candidate) Action {
	if c.HasProof && !existing.HasProof() {
		return ActionUseIncoming
	}
	if existing.IsVerified() {
		return ActionKeepExisting
	}
	return ActionKeepExisting
}
