// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthLoginSuccess       = "auth.login_success"

	// Households
	KeyHouseholdCreated      = "household.created"
	KeyHouseholdJoined       = "household.joined"
	KeyHouseholdNotFound     = "household.not_found"
	KeyHouseholdRequired     = "household.required"
	KeyHouseholdInvalidCode  = "household.invalid_code"
	KeyHouseholdAlreadyInOne = "household.already_member"

	// Products
	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductDeleted    = "product.deleted"
	KeyProductNotFound   = "product.not_found"
	KeyProductConsumed   = "product.consumed"
	KeyProductOpened     = "product.opened"
	KeyProductRestored   = "product.restored"
	KeyProductOutOfStock = "product.out_of_stock"
	KeyProductParsed     = "product.parsed"
	KeyProductUnparsable = "product.unparsable"

	// Shopping list
	KeyShoppingItemAdded     = "shopping.item_added"
	KeyShoppingItemPurchased = "shopping.item_purchased"
	KeyShoppingItemDeleted   = "shopping.item_deleted"
	KeyShoppingItemNotFound  = "shopping list item.not_found"
	KeyShoppingReconciled    = "shopping.reconciled"

	// Predictions
	KeyPredictionReady = "prediction.ready"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Store
	KeyStoreUnavailable = "store.unavailable"

	// File upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"
)
