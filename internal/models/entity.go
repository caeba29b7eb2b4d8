package models

// Entity names used in change notifications and sync bookkeeping.
const (
	EntityUser                = "user"
	EntityCategory            = "category"
	EntityIncome              = "income"
	EntitySpending            = "spending"
	EntitySavingsGoal         = "savings_goal"
	EntitySavingsContribution = "savings_contribution"
)

// EntityTables maps entity names to their tables.
var EntityTables = map[string]string{
	EntityUser:                "users",
	EntityCategory:            "categories",
	EntityIncome:              "income",
	EntitySpending:            "spending",
	EntitySavingsGoal:         "savings_goals",
	EntitySavingsContribution: "savings_contributions",
}
