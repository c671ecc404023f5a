package dynamo

// DynamoDB attribute names of the confirmation_attempts table.
const (
	fieldAttemptID = "attempt_id"
	fieldSubjectID = "subject_id"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

const subjectIndex = "subject_id-created_at-index"
