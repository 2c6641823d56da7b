package tests

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	sel "secretserver/tests/selectors"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/suite"
)

const baseURL = "http://localhost:3000"

type ServerSuite struct {
	suite.Suite
	process *Process
}

var (
	serverConfigPath string
	authConfigPath   string
)

func init() {
	flag.StringVar(&serverConfigPath, "server-config", "", "path to server config")
	flag.StringVar(&authConfigPath, "auth-config", "", "path to auth config")
}

// SetupSuite builds nothing itself: it expects ../bin/server to exist
// and starts it with the supplied configs.
func (s *ServerSuite) SetupSuite() {
	if serverConfigPath == "" || authConfigPath == "" {
		s.T().Skip("-server-config and -auth-config MUST be set to run browser tests")
	}
	p := NewProcess(context.Background(), "../bin/server",
		"-server-config", serverConfigPath,
		"-auth-config", authConfigPath)
	s.process = p
	err := p.Start(context.Background())
	if err != nil {
		s.T().Errorf("cant start process: %v", err)
	}

	if err := waitForStartup(time.Second * 5); err != nil {
		s.T().Fatalf("unable to start app: %v", err)
	}
}

func waitForStartup(duration time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	ticker := time.NewTicker(time.Second / 2)
	for {
		select {
		case <-ticker.C:
			r, _ := http.Get(baseURL + "/")
			if r != nil && r.StatusCode == http.StatusOK {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *ServerSuite) TearDownSuite() {
	if s.process == nil {
		return
	}
	exitCode, err := s.process.Stop()
	if err != nil {
		s.T().Logf("cant stop process: %v", err)
	}
	s.T().Logf("process finished with code %d", exitCode)
}

func (s *ServerSuite) TestGuestPages() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	ctx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	var brand string
	err := chromedp.Run(ctx,
		s.CheckGuestAccessGranted(baseURL+"/"),
		s.CheckGuestAccessGranted(baseURL+"/login"),
		s.CheckGuestAccessGranted(baseURL+"/register"),
		s.CheckGuestAccessGranted(baseURL+"/secrets"),
		chromedp.Navigate(baseURL+"/"),
		chromedp.Text(sel.Brand, &brand),
	)
	if err != nil {
		s.T().Fatal(err)
	}
	s.Equal("Whisperwall", brand)
}

func (s *ServerSuite) TestGuestSubmitRedirects() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	ctx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	var location string
	err := chromedp.Run(ctx,
		chromedp.Navigate(baseURL+"/submit"),
		chromedp.Location(&location),
	)
	if err != nil {
		s.T().Fatal(err)
	}
	s.True(strings.HasSuffix(location, "/login"), "guest /submit landed on %s", location)
}

func (s *ServerSuite) TestRegisterSubmitSecret() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*60)
	defer cancel()
	ctx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	username := fmt.Sprintf("e2e-%d", time.Now().UnixNano())
	secret := fmt.Sprintf("e2e secret %d", time.Now().UnixNano())

	var location string
	var secretsPage string
	err := chromedp.Run(ctx,
		chromedp.Navigate(baseURL+"/register"),
		chromedp.SendKeys(sel.RegisterFormUsername, username),
		chromedp.SendKeys(sel.RegisterFormPass, "pw123"),
		chromedp.Click(sel.RegisterFormSubmit),
		chromedp.Sleep(time.Second),
		chromedp.Location(&location),
		chromedp.Navigate(baseURL+"/submit"),
		chromedp.SendKeys(sel.SecretField, secret),
		chromedp.Click(sel.SecretFormSubmit),
		chromedp.WaitVisible(sel.SecretItem),
		chromedp.Text("main", &secretsPage),
	)
	if err != nil {
		s.T().Fatal(err)
	}
	s.True(strings.HasSuffix(location, "/secrets"), "register landed on %s", location)
	s.Contains(secretsPage, secret)
	s.NotContains(secretsPage, username)
}

func (s *ServerSuite) CheckGuestAccessGranted(path string) chromedp.Tasks {
	return []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			resp, err := chromedp.RunResponse(ctx,
				chromedp.Navigate(path))
			if err != nil {
				return err
			}
			if resp.Status != http.StatusOK {
				s.T().Errorf("guest access to %s should be allowed (status 200), server answered %d", path, resp.Status)
			}
			return nil
		}),
	}
}
