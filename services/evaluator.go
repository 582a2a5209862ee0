// services/evaluator.go - Condition Evaluation
package services

import (
	"vidverse/models"
)

// Matches reports whether a definition's condition is satisfied by the
// given action and metric value. Pure and total for any definition that
// passed catalog validation: flag conditions match on action identity
// alone, threshold conditions compare the metric against the definition's
// condition value. An action that does not equal the definition's
// condition type never matches, and an unknown condition type never
// matches either -- unknown types are rejected earlier, at seed/create
// time, so hitting one here means the caller bypassed the catalog.
func Matches(achievement models.Achievement, action models.ConditionType, value int64) bool {
	if achievement.ConditionType != action {
		return false
	}
	if !achievement.ConditionType.IsValid() {
		return false
	}
	if achievement.ConditionType.IsFlag() {
		return true
	}
	return value >= achievement.ConditionValue
}
