// Command applesecret mints the client secret for the Apple developer
// integration: an ES256 JWT signed with the team's .p8 key. Run it when
// the previous secret approaches Apple's six month expiry ceiling and
// paste the output into the identity provider configuration. It is not a
// runtime component.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Apple rejects client secrets valid for more than six months.
const maxTTL = 180 * 24 * time.Hour

func main() {
	var (
		keyPathFlag  string
		keyIDFlag    string
		teamIDFlag   string
		clientIDFlag string
		ttlDaysFlag  int
	)

	flag.StringVar(&keyPathFlag, "key-file", "", "path to the .p8 private key downloaded from the developer portal")
	flag.StringVar(&keyIDFlag, "key-id", "", "key identifier (kid) of the .p8 key")
	flag.StringVar(&teamIDFlag, "team-id", "", "developer team identifier")
	flag.StringVar(&clientIDFlag, "client-id", "", "services identifier used as the OAuth client id")
	flag.IntVar(&ttlDaysFlag, "ttl-days", 180, "secret lifetime in days (Apple caps this at 180)")
	flag.Parse()

	keyPath := strings.TrimSpace(keyPathFlag)
	keyID := strings.TrimSpace(keyIDFlag)
	teamID := strings.TrimSpace(teamIDFlag)
	clientID := strings.TrimSpace(clientIDFlag)

	if keyPath == "" || keyID == "" || teamID == "" || clientID == "" {
		exitWithError(errors.New("-key-file, -key-id, -team-id and -client-id are all required"))
	}

	ttl := time.Duration(ttlDaysFlag) * 24 * time.Hour
	if ttl <= 0 || ttl > maxTTL {
		exitWithError(fmt.Errorf("ttl of %d days is outside the allowed range (1-180)", ttlDaysFlag))
	}

	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		exitWithError(fmt.Errorf("failed to read key file: %w", err))
	}

	privateKey, err := jwt.ParseECPrivateKeyFromPEM(pemBytes)
	if err != nil {
		exitWithError(fmt.Errorf("failed to parse EC private key: %w", err))
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": teamID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"aud": "https://appleid.apple.com",
		"sub": clientID,
	})
	token.Header["kid"] = keyID

	signed, err := token.SignedString(privateKey)
	if err != nil {
		exitWithError(fmt.Errorf("failed to sign client secret: %w", err))
	}

	fmt.Println(signed)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
