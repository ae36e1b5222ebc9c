// internal/i18n/catalogs.go
package i18n

var enCatalog = map[string]string{
	KeyAuthRequired:           "Authentication required",
	KeyAuthInvalidToken:       "Invalid authentication token",
	KeyAuthTokenExpired:       "Authentication token expired",
	KeyAuthInvalidCredentials: "Invalid email or password",
	KeyAuthUserExists:         "A user with this email already exists",
	KeyAuthRegisterSuccess:    "Account created",
	KeyAuthLoginSuccess:       "Welcome back",

	KeyHouseholdCreated:      "Household created",
	KeyHouseholdJoined:       "You joined the household",
	KeyHouseholdNotFound:     "Household not found",
	KeyHouseholdRequired:     "You need to belong to a household first",
	KeyHouseholdInvalidCode:  "Invalid invite code",
	KeyHouseholdAlreadyInOne: "You already belong to a household",

	KeyProductCreated:    "Product added to your pantry",
	KeyProductUpdated:    "Product updated",
	KeyProductDeleted:    "Product removed",
	KeyProductNotFound:   "Product not found",
	KeyProductConsumed:   "Consumption registered",
	KeyProductOpened:     "Product opened",
	KeyProductRestored:   "Product restocked",
	KeyProductOutOfStock: "Product is out of stock",
	KeyProductParsed:     "Product recognized",
	KeyProductUnparsable: "Could not recognize a product in that text",

	KeyShoppingItemAdded:     "Item added to the shopping list",
	KeyShoppingItemPurchased: "Item marked as purchased",
	KeyShoppingItemDeleted:   "Item removed from the shopping list",
	KeyShoppingItemNotFound:  "Shopping list item not found",
	KeyShoppingReconciled:    "Shopping list reconciled",

	KeyPredictionReady: "Forecast ready",

	KeyValidationInvalid: "Invalid %s",

	KeyStoreUnavailable: "Storage is temporarily unavailable, try again",

	KeyFileUploadSuccess: "File uploaded",
	KeyFileUploadFailed:  "File upload failed",
	KeyFileInvalidType:   "File type not allowed",
	KeyFileTooLarge:      "File is too large",
}

var esCatalog = map[string]string{
	KeyAuthRequired:           "Se requiere autenticación",
	KeyAuthInvalidToken:       "Token de autenticación inválido",
	KeyAuthTokenExpired:       "El token de autenticación expiró",
	KeyAuthInvalidCredentials: "Correo o contraseña incorrectos",
	KeyAuthUserExists:         "Ya existe un usuario con este correo",
	KeyAuthRegisterSuccess:    "Cuenta creada",
	KeyAuthLoginSuccess:       "Bienvenido de nuevo",

	KeyHouseholdCreated:      "Hogar creado",
	KeyHouseholdJoined:       "Te uniste al hogar",
	KeyHouseholdNotFound:     "Hogar no encontrado",
	KeyHouseholdRequired:     "Primero necesitas pertenecer a un hogar",
	KeyHouseholdInvalidCode:  "Código de invitación inválido",
	KeyHouseholdAlreadyInOne: "Ya perteneces a un hogar",

	KeyProductCreated:    "Producto agregado a tu despensa",
	KeyProductUpdated:    "Producto actualizado",
	KeyProductDeleted:    "Producto eliminado",
	KeyProductNotFound:   "Producto no encontrado",
	KeyProductConsumed:   "Consumo registrado",
	KeyProductOpened:     "Producto abierto",
	KeyProductRestored:   "Producto repuesto",
	KeyProductOutOfStock: "El producto está agotado",
	KeyProductParsed:     "Producto reconocido",
	KeyProductUnparsable: "No se pudo reconocer un producto en ese texto",

	KeyShoppingItemAdded:     "Artículo agregado a la lista de compras",
	KeyShoppingItemPurchased: "Artículo marcado como comprado",
	KeyShoppingItemDeleted:   "Artículo eliminado de la lista de compras",
	KeyShoppingItemNotFound:  "Artículo de la lista no encontrado",
	KeyShoppingReconciled:    "Lista de compras reconciliada",

	KeyPredictionReady: "Pronóstico listo",

	KeyValidationInvalid: "%s inválido",

	KeyStoreUnavailable: "El almacenamiento no está disponible, intenta de nuevo",

	KeyFileUploadSuccess: "Archivo subido",
	KeyFileUploadFailed:  "Falló la subida del archivo",
	KeyFileInvalidType:   "Tipo de archivo no permitido",
	KeyFileTooLarge:      "El archivo es demasiado grande",
}
