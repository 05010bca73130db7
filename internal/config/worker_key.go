package config

type WorkerKeyStruct struct {
	PlanAuditQueue       string
	SnapshotRefreshQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PlanAuditQueue:       "plan_audit_queue",
	SnapshotRefreshQueue: "snapshot_refresh_queue",
}
