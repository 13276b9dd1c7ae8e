package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrSessionPending     ErrCode = "SESSION_PENDING"
	ErrSessionRevoked     ErrCode = "SESSION_REVOKED"
	ErrInvalidAuthCode    ErrCode = "INVALID_AUTH_CODE"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrAdminAccessOnly  ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation        ErrCode = "VALIDATION_ERROR"
	ErrInvalidID         ErrCode = "INVALID_ID"
	ErrInvalidPayload    ErrCode = "INVALID_PAYLOAD"
	ErrUnknownPermission ErrCode = "UNKNOWN_PERMISSION"
	ErrInvalidHeader     ErrCode = "INVALID_IMPORT_HEADER"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Storage ───────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrUnknownBucket   ErrCode = "UNKNOWN_BUCKET"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "อีเมลหรือรหัสผ่านไม่ถูกต้อง"
	case ErrTokenRequired:
		return "กรุณาเข้าสู่ระบบ"
	case ErrTokenInvalid:
		return "โทเค็นไม่ถูกต้อง"
	case ErrTokenExpired:
		return "เซสชันหมดอายุ กรุณาเข้าสู่ระบบอีกครั้ง"
	case ErrSessionPending:
		return "กำลังตรวจสอบการเข้าสู่ระบบ"
	case ErrSessionRevoked:
		return "เซสชันถูกยกเลิกแล้ว กรุณาเข้าสู่ระบบอีกครั้ง"
	case ErrInvalidAuthCode:
		return "รหัสยืนยันการเข้าสู่ระบบไม่ถูกต้องหรือหมดอายุ"
	case ErrEmailTaken:
		return "อีเมลนี้ถูกใช้งานแล้ว"

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "คุณไม่มีสิทธิ์เข้าถึงข้อมูลนี้"
	case ErrPermissionDenied:
		return "ไม่ได้รับอนุญาต"
	case ErrAdminAccessOnly:
		return "เฉพาะผู้ดูแลระบบเท่านั้น"

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "ข้อมูลไม่ถูกต้อง กรุณาตรวจสอบอีกครั้ง"
	case ErrInvalidID:
		return "รูปแบบรหัสไม่ถูกต้อง"
	case ErrInvalidPayload:
		return "รูปแบบคำขอไม่ถูกต้อง"
	case ErrUnknownPermission:
		return "ไม่รู้จักสิทธิ์นี้"
	case ErrInvalidHeader:
		return "หัวตารางไม่ถูกต้อง ต้องมีคอลัมน์ ชื่อ, อีเมล, รหัสผ่าน, สถานะ"

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "ไม่พบข้อมูล"
	case ErrConflict:
		return "ข้อมูลนี้มีอยู่แล้ว"
	case ErrActionForbidden:
		return "ไม่สามารถดำเนินการนี้ได้"

	// ─── Storage ───────────────────────────────────────────────────────
	case ErrFileRequired:
		return "กรุณาเลือกไฟล์"
	case ErrUnsupportedFile:
		return "ไม่รองรับไฟล์ประเภทนี้"
	case ErrFileTooLarge:
		return "ไฟล์มีขนาดเกินกำหนด"
	case ErrUnknownBucket:
		return "ไม่พบพื้นที่จัดเก็บไฟล์"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "มีคำขอมากเกินไป กรุณาลองใหม่ภายหลัง"

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "เกิดข้อผิดพลาดภายในระบบ"
	default:
		return "เกิดข้อผิดพลาดที่ไม่คาดคิด"
	}
}
