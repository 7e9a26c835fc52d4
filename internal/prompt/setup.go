package prompt

import "strconv"

// Setup defaults.
const (
	DefaultAdminPassword = "kbot-admin"
	DefaultDBHost        = "localhost"
	DefaultDBPort        = 5432
	DefaultDBName        = "kbot_db"
	DefaultDBUser        = "kbot_db_user"
	DefaultDBPassword    = "kbot_db_pwd" //nolint:gosec // Development default, replaced during setup
	DefaultHTTPInterface = "*"
	DefaultHTTPPort      = 8080
	DefaultHTTPSPort     = 8443
	DefaultRedisHost     = "localhost"
	DefaultRedisPort     = 6379
)

// Settings holds the answers of a setup run as flat key/value pairs, the
// shape settings.yml is written in.
type Settings map[string]string

// Merge copies other's entries into s, overwriting existing keys.
func (s Settings) Merge(other Settings) {
	for key, value := range other {
		s[key] = value
	}
}

// Admin asks for the password of the built-in admin user.
func (p *Prompter) Admin() (Settings, error) {
	password, err := p.AskPassword(
		"Enter a password for the default 'admin' user: ", DefaultAdminPassword, true)
	if err != nil {
		return nil, err
	}

	return Settings{"admin_password": password}, nil
}

// Database asks for the PostgreSQL connection parameters.
func (p *Prompter) Database() (Settings, error) {
	host, err := p.AskInput("Database host", DefaultDBHost)
	if err != nil {
		return nil, err
	}

	port, err := p.AskPort("Database port", DefaultDBPort)
	if err != nil {
		return nil, err
	}

	name, err := p.AskInput("Database name", DefaultDBName)
	if err != nil {
		return nil, err
	}

	user, err := p.AskInput("Database user", DefaultDBUser)
	if err != nil {
		return nil, err
	}

	password, err := p.AskPassword("Enter a password for the database user: ", DefaultDBPassword, false)
	if err != nil {
		return nil, err
	}

	return Settings{
		"db_host":     host,
		"db_port":     strconv.Itoa(port),
		"db_name":     name,
		"db_user":     user,
		"db_password": password,
	}, nil
}

// HTTP asks for the web server's listen interface and ports. Declining
// the HTTP port leaves it out and makes the HTTPS question mandatory.
func (p *Prompter) HTTP() (Settings, error) {
	settings := Settings{}

	iface, err := p.AskInput(
		"Network interface the web server should listen on", DefaultHTTPInterface)
	if err != nil {
		return nil, err
	}

	settings["http_interface"] = iface

	useHTTP, err := p.AskYN("Are you going to use an HTTP port?", true)
	if err != nil {
		return nil, err
	}

	httpPort := 0

	if useHTTP {
		httpPort, err = p.AskPort("Enter the HTTP port number for the web server", DefaultHTTPPort)
		if err != nil {
			return nil, err
		}

		settings["http_port"] = strconv.Itoa(httpPort)
	}

	useHTTPS := true

	if useHTTP {
		useHTTPS, err = p.AskYN("Are you going to use an HTTPS port for secure connections?", true)
		if err != nil {
			return nil, err
		}
	}

	if useHTTPS {
		httpsPort, err := p.AskPort(
			"Enter the HTTPS port number for the web server", DefaultHTTPSPort, httpPort)
		if err != nil {
			return nil, err
		}

		settings["https_port"] = strconv.Itoa(httpsPort)
	}

	return settings, nil
}

// Redis asks for the Redis connection parameters. The password may be
// empty for unauthenticated instances.
func (p *Prompter) Redis() (Settings, error) {
	host, err := p.AskInput("Redis host", DefaultRedisHost)
	if err != nil {
		return nil, err
	}

	port, err := p.AskPort("Redis port", DefaultRedisPort)
	if err != nil {
		return nil, err
	}

	password, err := p.AskInput("Redis password (leave empty for none)", "")
	if err != nil {
		return nil, err
	}

	settings := Settings{
		"redis_host": host,
		"redis_port": strconv.Itoa(port),
	}

	if password != "" {
		settings["redis_password"] = password
	}

	return settings, nil
}

// Setup runs all prompt flows and merges their answers.
func (p *Prompter) Setup() (Settings, error) {
	settings := Settings{}

	flows := []func() (Settings, error){p.Admin, p.Database, p.HTTP, p.Redis}

	for _, flow := range flows {
		answers, err := flow()
		if err != nil {
			return nil, err
		}

		settings.Merge(answers)
	}

	return settings, nil
}
