package smtp_client

type SmtpServerList struct {
	Servers []SmtpServer `yaml:"servers"`
	From    string       `yaml:"from"`
	Sender  string       `yaml:"sender"`
	ReplyTo []string     `yaml:"replyTo"`
}

type SmtpServer struct {
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	Connections        int    `yaml:"connections"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	AuthData           struct {
		Username string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
	SendTimeout int `yaml:"sendTimeout"`
}

// Address URI to smtp server
func (s *SmtpServer) Address() string {
	return s.Host + ":" + s.Port
}

// SetCredentials overrides the authentication data, e.g. from environment variables
func (s *SmtpServer) SetCredentials(username string, password string) {
	if username != "" {
		s.AuthData.Username = username
	}
	if password != "" {
		s.AuthData.Password = password
	}
}

// IsConfigured reports whether at least one server and a sender address are set.
func (sl SmtpServerList) IsConfigured() bool {
	return len(sl.Servers) > 0 && sl.From != ""
}
