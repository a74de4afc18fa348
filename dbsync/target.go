package dbsync

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/xo/dburl"
)

// DefaultPort is used when the connection URL omits the port.
const DefaultPort = 3306

var ErrInvalidURL = errors.New("invalid database url")

// Target is a remote MySQL database reachable over TCP.
type Target struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// ParseURL parses a connection URL such as the MYSQL_URL handed out by
// managed hosting providers. The mysql:// scheme is optional.
func ParseURL(raw string) (*Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "mysql://" + raw
	}

	u, err := dburl.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Driver != "mysql" {
		return nil, fmt.Errorf("%w: unsupported driver %q", ErrInvalidURL, u.Driver)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	t := &Target{
		Host:     u.Hostname(),
		Port:     DefaultPort,
		Database: strings.TrimPrefix(u.Path, "/"),
	}
	if p := u.Port(); p != "" {
		t.Port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: bad port %q", ErrInvalidURL, p)
		}
	}
	if u.User != nil {
		t.User = u.User.Username()
		t.Password, _ = u.User.Password()
	}
	return t, nil
}

// Addr returns host:port.
func (t *Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// DSN renders the target as a go-sql-driver/mysql data source name.
func (t *Target) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = t.User
	cfg.Passwd = t.Password
	cfg.Net = "tcp"
	cfg.Addr = t.Addr()
	cfg.DBName = t.Database
	return cfg.FormatDSN()
}

// String returns the target without its password.
func (t *Target) String() string {
	return fmt.Sprintf("mysql://%s@%s/%s", t.User, t.Addr(), t.Database)
}
