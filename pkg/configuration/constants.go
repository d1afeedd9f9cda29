package configuration

const (
	API_URL           string = "vaultview_api"              // API_URL (string) sets/returns the vendor Teams API base URL
	LISTEN_ADDR       string = "vaultview_listen_addr"      // LISTEN_ADDR (string) sets/returns the address the HTTP API binds to
	CREDENTIALS_FILE  string = "vaultview_credentials_file" // CREDENTIALS_FILE (string) sets/returns the path of the stored credential set
	LOG_LEVEL         string = "vaultview_log_level"        // LOG_LEVEL (string) zerolog level name (trace,debug,info,...)
	DEBUG             string = "debug"                      // DEBUG (boolean) sets/returns if debugging is enabled or not
	INSECURE_HTTPS    string = "insecure"                   // INSECURE_HTTPS (boolean) sets/returns if certificate verification is skipped
	TIMEOUT           string = "vaultview_timeout_secs"     // TIMEOUT (int) per request timeout in seconds
	MEMBERS_PAGE_SIZE string = "vaultview_members_limit"    // MEMBERS_PAGE_SIZE (int) page size of the members call, only the first page is fetched

	// internal constants
	MAX_TENANT_FETCHES    string = "internal_max_tenant_fetches"         // MAX_TENANT_FETCHES (int) upper bound of concurrently fetching tenant pipelines, 0 means unbounded
	RETRY_ATTEMPTS        string = "internal_network_max_attempts"       // RETRY_ATTEMPTS (int) request attempts incl. the initial one
	RETRY_AFTER_SECONDS   string = "internal_network_retry_after_secs"   // RETRY_AFTER_SECONDS (int) fallback backoff when the server sends no Retry-After
	DEVICE_CACHE_TTL_SECS string = "internal_device_cache_ttl_secs"      // DEVICE_CACHE_TTL_SECS (int) in-session TTL of drilled-down device lists
)
