package contract

type DevicesResponse struct {
	Data Devices `json:"data"`
}

type Devices struct {
	Devices []Device `json:"devices"`
}

type Device struct {
	Name       string `json:"name"`
	Platform   string `json:"platform"`
	AppVersion string `json:"appVersion,omitempty"`
	Model      string `json:"model,omitempty"`
	OsVersion  string `json:"osVersion,omitempty"`
}
