package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// postgres or memory
	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`

	// s3 or supabase
	StorageBackend   string `envconfig:"STORAGE_BACKEND" default:"s3"`
	S3BucketName     string `envconfig:"S3_BUCKET_NAME"`
	S3PublicBaseURL  string `envconfig:"S3_PUBLIC_BASE_URL"`
	SupabaseProject  string `envconfig:"SUPABASE_PROJECT_ID"`
	SupabaseAPIKey   string `envconfig:"SUPABASE_API_KEY"`
	SupabaseBucket   string `envconfig:"SUPABASE_BUCKET" default:"rto-documents"`
	MaxUploadBytes   int64  `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"` // 5 MiB per file
	SubmitTimeoutSec uint   `envconfig:"SUBMIT_TIMEOUT_SEC" default:"30"`

	// page redirects to the payment step on success, modal resets the form
	FormMode     string `envconfig:"FORM_MODE" default:"page"`
	PaymentURL   string `envconfig:"PAYMENT_URL" default:"/payment"`
	PaymentPlan  string `envconfig:"PAYMENT_PLAN" default:"RTO Assistance"`
	PaymentPrice int    `envconfig:"PAYMENT_PRICE" default:"299"`

	// Cookie encryption keys (base64 encoded) for flash notifications
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
