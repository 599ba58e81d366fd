package handler

const (
	// APIPath is the root path of the versioned api.
	APIPath = "/api/v1"

	// ErrNilACSFatalLogMsg is used if router, cfg or store is nil.
	ErrNilACSFatalLogMsg = "router, cfg or store is nil"

	// LocalsOwner is the fiber.Locals key holding the normalized request owner.
	LocalsOwner = "owner"
)

// i18n codes of the response envelope.
const (
	I18nConfigsFound   = "CONFIGS_FOUND"
	I18nConfigFound    = "CONFIG_FOUND"
	I18nConfigNotFound = "CONFIG_NOT_FOUND"
	I18nConfigSet      = "CONFIG_SET"
	I18nConfigsSet     = "CONFIGS_SET"
	I18nConfigUnset    = "CONFIG_UNSET"
	I18nInvalidBody    = "INVALID_BODY"
	I18nRouteNotFound  = "ROUTE_NOT_FOUND"
	I18nInternalError  = "#INTERNAL_SERVER_ERROR"
	I18nUnavailable    = "#SERVICE_UNAVAILABLE"
)
