package constants

// Roles
const (
	ROLE_ADMIN     = "ADMIN"
	ROLE_MANAGER   = "MANAGER"
	ROLE_OPERATOR  = "OPERATOR"
	ROLE_TICKETING = "TICKETING"
)

var ROLES = []string{ROLE_ADMIN, ROLE_MANAGER, ROLE_OPERATOR, ROLE_TICKETING}

// Common response messages
const (
	ERROR_INTERNAL_ERROR     = "Internal server error"
	MISSING_LOGIN_INPUT      = "Missing username or password"
	INVALID_USERNAME         = "Username does not exist"
	INVALID_PASSWORD         = "Incorrect password"
	ACCOUNT_NOT_ACTIVE       = "Account is deactivated"
	DATA_INPUT_IS_NOT_NUMBER = "Input must be a number"
	INVALID_INPUT            = "Invalid input"
	NOT_ADMIN                = "You do not have permission"
	INVALID_EMAIL            = "Email does not exist"
	CAN_NOT_HASH_PASSWORD    = "Could not hash password"
	ERROR_PARSE_DATA_TO_LOCALS = "Could not read validated input"
	ERROR_CREATE             = "Could not create record"
	ERROR_EDIT               = "Could not update record"
	ERROR_DELETE             = "Could not delete record"
	NOT_FOUND_RECORDS        = "Record not found"
	ERROR_INPUT              = "Could not parse input"
)

// Trip statuses
const (
	TRIP_SCHEDULED = "SCHEDULED"
	TRIP_DEPARTED  = "DEPARTED"
	TRIP_COMPLETED = "COMPLETED"
	TRIP_CANCELLED = "CANCELLED"
)

// Payment methods
const (
	PAYMENT_CARD    = "CARD"
	PAYMENT_CASH    = "CASH"
	PAYMENT_GATEWAY = "GATEWAY"
)

var PAYMENT_METHODS = []string{PAYMENT_CARD, PAYMENT_CASH, PAYMENT_GATEWAY}
