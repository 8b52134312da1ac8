// Package live observes DNP3 traffic on the local host by diverting it
// through an NFQUEUE, dissecting each packet and passing it on unmodified.
package live

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coreos/go-iptables/iptables"
	nfqueue "github.com/florianl/go-nfqueue"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/rs/zerolog"

	"github.com/nblair2/dnp3snoop/internal/capture"
)

const (
	TABLE     string = "mangle"
	QUEUE_NUM uint16 = 2
)

// both directions of the DNP3 connection pass through these chains
var chains = []string{"INPUT", "OUTPUT"}

func portRule(chain string, port int) []string {
	flag := "--dport"
	if chain == "INPUT" {
		flag = "--sport"
	}

	return []string{
		"--protocol", "tcp", flag, strconv.Itoa(port),
		"--jump", "NFQUEUE", "--queue-num", fmt.Sprintf("%d", QUEUE_NUM),
	}
}

func addRules(port int) error {
	ipt, err := iptables.New()
	if err != nil {
		return fmt.Errorf("error creating new iptables: %w", err)
	}

	for _, chain := range chains {
		if err := ipt.Insert(TABLE, chain, 1, portRule(chain, port)...); err != nil {
			return fmt.Errorf("error inserting rule: %w", err)
		}
	}

	return nil
}

func deleteRules(port int) error {
	ipt, err := iptables.New()
	if err != nil {
		return fmt.Errorf("error creating new iptables: %w", err)
	}

	for _, chain := range chains {
		if err := ipt.DeleteIfExists(TABLE, chain, portRule(chain, port)...); err != nil {
			return fmt.Errorf("error deleting rule: %w", err)
		}
	}

	return nil
}

// Observe dissects live traffic for the given TCP port until interrupted.
// Every packet is accepted unmodified; the queue is only a vantage point.
func Observe(port int, flows *capture.Flows, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := addRules(port); err != nil {
		return fmt.Errorf("error creating the iptables rules: %w", err)
	}

	config := nfqueue.Config{
		NfQueue:      QUEUE_NUM,
		MaxPacketLen: 0xFFFF,
		MaxQueueLen:  0xFF,
		Copymode:     nfqueue.NfQnlCopyPacket,
		WriteTimeout: time.Second,
	}

	nf, err := nfqueue.Open(&config)
	if err != nil {
		//nolint:errcheck // best effort cleanup on the way out
		deleteRules(port)

		return fmt.Errorf("could not open nfqueue socket: %w", err)
	}
	defer nf.Close()

	observeFn := func(a nfqueue.Attribute) int {
		if a.Payload != nil {
			pkt := gopacket.NewPacket(*a.Payload, layers.LayerTypeIPv4, gopacket.Default)
			if err := flows.HandlePacket(pkt); err != nil {
				log.Error().Err(err).Msg("dissection error")
			}
		}

		//nolint:errcheck // verdict failure only loses one packet
		nf.SetVerdict(*a.PacketID, nfqueue.NfAccept)

		return 0
	}

	errFn := func(_ error) int {
		return 0
	}

	if err := nf.RegisterWithErrorFunc(ctx, observeFn, errFn); err != nil {
		//nolint:errcheck // best effort cleanup on the way out
		deleteRules(port)

		return fmt.Errorf("error registering observer function: %w", err)
	}

	select {
	case <-ctx.Done():
	case sig := <-sigChan:
		fmt.Printf("\nObserver stopped with signal %v\n", sig)
		cancel()
	}

	flows.Finish()

	fmt.Print("Cleaning up...")

	if err := deleteRules(port); err != nil {
		return fmt.Errorf(`error deleting the iptables rules,
			you should manually clean the %s table: %w`, TABLE, err)
	}

	fmt.Println("done!")

	return nil
}
