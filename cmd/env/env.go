package env

const (
	// Prefix is the prefix of all vcbrates environment variables
	Prefix = "VCBRATES_"

	// DBURLSuffix names the PostgreSQL connection string variable
	DBURLSuffix = "DB_URL"
)

// DBURLKey is the full PostgreSQL connection string variable name
const DBURLKey = Prefix + DBURLSuffix
