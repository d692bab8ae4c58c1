package service

// QRCodeService defines the interface for QR code generation services
type QRCodeService interface {
	// GenerateProfileQR generates a QR code PNG pointing at the public
	// profile page of the given username.
	GenerateProfileQR(username string) ([]byte, error)
}
