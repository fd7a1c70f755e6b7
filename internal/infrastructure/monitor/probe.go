package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/valyala/fasthttp"
)

// Check is a single reachability test. pgxpool.Pool.Ping satisfies it directly.
type Check func(ctx context.Context) error

// CheckProber derives a Status from two groups of checks. Internet checks only run when
// every network check passed.
type CheckProber struct {
	network  []Check
	internet []Check
}

func NewProber(network, internet []Check) *CheckProber {
	return &CheckProber{network: network, internet: internet}
}

func (p *CheckProber) Probe(ctx context.Context) (Status, error) {
	status := Status{LastCheck: time.Now()}

	if err := runChecks(ctx, p.network); err != nil {
		status.LastError = err.Error()
		return status, nil
	}
	status.NetworkReachable = true

	if err := runChecks(ctx, p.internet); err != nil {
		status.LastError = err.Error()
		return status, nil
	}
	status.InternetReachable = true
	return status, nil
}

func runChecks(ctx context.Context, checks []Check) error {
	for _, check := range checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// InterfaceCheck passes when at least one non-loopback interface is up and has an address.
func InterfaceCheck() Check {
	return func(ctx context.Context) error {
		ifaces, err := net.Interfaces()
		if err != nil {
			return err
		}
		for _, iface := range ifaces {
			if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
				continue
			}
			addrs, err := iface.Addrs()
			if err == nil && len(addrs) > 0 {
				return nil
			}
		}
		return errors.New("no active network interface")
	}
}

// HTTPCheck requests url and expects a 2xx answer, the way mobile reachability probes hit a
// generate_204 endpoint.
func HTTPCheck(client *fasthttp.Client, url string) Check {
	if client == nil {
		client = &fasthttp.Client{}
	}
	return func(ctx context.Context) error {
		timeout := 3 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if timeout <= 0 {
			return context.DeadlineExceeded
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)

		if err := client.DoTimeout(req, resp, timeout); err != nil {
			return err
		}
		if code := resp.StatusCode(); code < 200 || code > 299 {
			return fmt.Errorf("reachability probe returned %d", code)
		}
		return nil
	}
}
