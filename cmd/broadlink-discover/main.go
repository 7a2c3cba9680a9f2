// broadlink-discover finds Broadlink RM appliances on the local network.
//
// It broadcasts a discovery probe from every non-loopback IPv4 interface,
// performs the key-exchange handshake with each supported appliance and
// prints what it finds. With -learn it also puts the first ready appliance
// into learning mode and prints the captured code as hex.
//
// Usage:
//
//	broadlink-discover [options]
//
// Options:
//
//	-learn     capture one IR code from the first appliance found
//	-timeout   how long to wait for responses (default: 5s)
//	-verbose   enable debug logging
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/pion/logging"

	"github.com/plungarini/broadlink-rm-go/pkg/discovery"
	"github.com/plungarini/broadlink-rm-go/pkg/session"
)

func main() {
	learn := flag.Bool("learn", false, "capture one IR code from the first appliance found")
	timeout := flag.Duration("timeout", 5*time.Second, "how long to wait for responses")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	loggerFactory := logging.NewDefaultLoggerFactory()
	if *verbose {
		loggerFactory.DefaultLogLevel = logging.LogLevelDebug
	} else {
		loggerFactory.DefaultLogLevel = logging.LogLevelWarn
	}

	ready := make(chan *session.Session, 16)
	learned := make(chan []byte, 1)

	svc := discovery.New(discovery.Config{
		LoggerFactory: loggerFactory,
		Events: session.Events{
			DeviceReady: func(s *session.Session) {
				fmt.Printf("found %s (%s) at %v\n",
					s.Classification().Label, s.MAC(), s.Addr())
				select {
				case ready <- s:
				default:
				}
			},
			Temperature: func(v float64) {
				fmt.Printf("temperature: %.1f°C\n", v)
			},
			RawData: func(code []byte) {
				select {
				case learned <- code:
				default:
				}
			},
		},
		OnUnknownDevice: func(deviceType string, addr net.Addr) {
			fmt.Printf("unknown device type %s at %v\n", deviceType, addr)
		},
	})
	defer svc.Stop()

	if err := svc.Discover(); err != nil {
		log.Fatalf("discovery failed: %v", err)
	}

	if !*learn {
		time.Sleep(*timeout)
		if len(svc.Sessions()) == 0 {
			fmt.Println("no appliances found")
		}
		return
	}

	var target *session.Session
	select {
	case target = <-ready:
	case <-time.After(*timeout):
		fmt.Println("no appliances found")
		os.Exit(1)
	}

	if err := target.EnterLearning(); err != nil {
		log.Fatalf("entering learning mode: %v", err)
	}
	fmt.Println("point the remote at the appliance and press a button...")

	// The protocol has no completion signal for learning; poll for the
	// captured code the way the vendor apps do.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	deadline := time.After(30 * time.Second)

	for {
		select {
		case code := <-learned:
			fmt.Printf("captured code: %s\n", hex.EncodeToString(code))
			return
		case <-ticker.C:
			if err := target.CheckData(); err != nil {
				log.Fatalf("polling learned data: %v", err)
			}
		case <-deadline:
			target.CancelLearning()
			fmt.Println("no code captured")
			os.Exit(1)
		}
	}
}
