package constants

const VAULTVIEW_DEFAULT_API_URL = "https://api.dashlane.com/public/teams"
const VAULTVIEW_DEFAULT_LISTEN_ADDR = "127.0.0.1:8700"
const VAULTVIEW_DEFAULT_MEMBERS_PAGE_SIZE = 100
const VAULTVIEW_CREDENTIALS_FILE = "portfolio_credentials.json"
const VAULTVIEW_USER_AGENT = "vaultview"
