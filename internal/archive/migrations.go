package archive

import "jobboard/common/database/schema"

var CreateSnapshotsTable = schema.Migration{
	Version:     1,
	Description: "Create analytics_snapshots table",
	Up: `
		CREATE TABLE IF NOT EXISTS analytics_snapshots (
			snapshot_id UUID,
			taken_at DateTime,
			days UInt16,
			total_visits UInt64,
			unique_visitors UInt64,
			job_views UInt64,
			job_clicks UInt64,
			conversion_rate Float64,
			device_breakdown Map(String, UInt64),
			browser_breakdown Map(String, UInt64)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(taken_at)
		ORDER BY (taken_at, snapshot_id)
	`,
	Down: `DROP TABLE IF EXISTS analytics_snapshots`,
}

var CreateJobStatsTable = schema.Migration{
	Version:     2,
	Description: "Create analytics_job_stats table",
	Up: `
		CREATE TABLE IF NOT EXISTS analytics_job_stats (
			snapshot_id UUID,
			taken_at DateTime,
			job_id String,
			role String,
			company_name String,
			views UInt64,
			clicks UInt64,
			conversion_rate Float64
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(taken_at)
		ORDER BY (job_id, taken_at)
	`,
	Down: `DROP TABLE IF EXISTS analytics_job_stats`,
}

// Migrations lists every schema change in version order.
var Migrations = []schema.Migration{
	CreateSnapshotsTable,
	CreateJobStatsTable,
}
