package user

type Permission string

const (
	// Evaluation
	PermissionEvaluationCreate Permission = "evaluation.create"
	PermissionEvaluationSubmit Permission = "evaluation.submit"

	// Personnel
	PermissionPersonnelView   Permission = "personnel.view"
	PermissionPersonnelManage Permission = "personnel.manage"

	// Statistics
	PermissionStatisticsView Permission = "statistics.view"

	// Polls
	PermissionPollCreate Permission = "poll.create"
	PermissionPollVote   Permission = "poll.vote"
	PermissionPollManage Permission = "poll.manage"

	// User Management
	PermissionUserManage Permission = "user.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionPersonnelView,
		PermissionPersonnelManage,
		PermissionStatisticsView,
		PermissionPollCreate,
		PermissionPollVote,
		PermissionPollManage,
		PermissionUserManage,
	},
	RoleRater: {
		PermissionEvaluationCreate,
		PermissionEvaluationSubmit,
		PermissionPersonnelView,
		PermissionPollCreate,
		PermissionPollVote,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
