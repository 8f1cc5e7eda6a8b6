package client

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sage-x-project/sshauth/authstate"
	"github.com/sage-x-project/sshauth/internal/logger"
	"github.com/sage-x-project/sshauth/pki"
)

// AuthAuto composes the agent cascade and file-based identity iteration
// on top of the publickey-offer and publickey-sign drivers
// (specification section 4.7). passphrase, if non-empty, is used
// directly for every encrypted identity encountered; prompt is
// consulted when passphrase is empty, falling back to the session's
// configured PromptPassphrase callback. Either may be nil/empty.
func (c *Client) AuthAuto(username string, passphrase []byte, prompt pki.PassphraseFunc) (authstate.Result, error) {
	if c.Agent != nil {
		result, err := c.AuthAgent(username)
		if err != nil || result == authstate.AuthSuccess {
			return result, err
		}
	}

	resolvedPrompt := c.resolvePassphrasePrompt(passphrase, prompt)

	identityFiles := c.Session.IdentityFiles
	if len(identityFiles) == 0 {
		identityFiles = defaultIdentityFiles()
	}

	last := authstate.AuthDenied
	for _, path := range identityFiles {
		result, err := c.tryIdentityFile(username, path, resolvedPrompt)
		if err != nil {
			return authstate.AuthError, err
		}
		switch result {
		case authstate.AuthSuccess:
			return result, nil
		case authstate.AuthAgain:
			return result, nil
		case authstate.AuthError:
			return result, nil
		default:
			last = result
		}
	}
	return last, nil
}

func (c *Client) resolvePassphrasePrompt(passphrase []byte, prompt pki.PassphraseFunc) pki.PassphraseFunc {
	if len(passphrase) > 0 {
		return func(string) ([]byte, error) { return passphrase, nil }
	}
	if prompt != nil {
		return prompt
	}
	return c.Session.Callbacks.PromptPassphrase
}

// tryIdentityFile imports path's public half (deriving and persisting
// it from the private key on a first use), offers it, and on offer
// success signs with the matching private key.
func (c *Client) tryIdentityFile(username, path string, prompt pki.PassphraseFunc) (authstate.Result, error) {
	pub, priv, err := c.loadIdentity(path, prompt)
	if err != nil {
		c.log().Warn("client: skipping identity file", logger.String("path", path), logger.Error(err))
		return authstate.AuthDenied, nil
	}

	offerResult, err := c.AuthTryPublicKey(username, pub)
	if err != nil {
		return authstate.AuthError, err
	}
	if offerResult == authstate.AuthError {
		return offerResult, nil
	}
	if offerResult != authstate.AuthSuccess {
		return offerResult, nil
	}

	if priv == nil {
		priv, err = c.PKI.LoadPrivate(path, prompt)
		if err != nil {
			c.log().Warn("client: offered key accepted but private load failed", logger.String("path", path), logger.Error(err))
			return authstate.AuthDenied, nil
		}
	}
	return c.AuthPublicKey(username, priv)
}

// loadIdentity attempts path+".pub" first; on a missing public file it
// loads the private key instead and derives+persists the public
// sibling best effort. It returns a non-nil priv only when the private
// key was actually the one loaded (avoiding a redundant second
// passphrase prompt in the common case).
func (c *Client) loadIdentity(path string, prompt pki.PassphraseFunc) (pub, priv pki.KeyPair, err error) {
	pub, pubErr := c.PKI.LoadPublic(path + ".pub")
	if pubErr == nil {
		return pub, nil, nil
	}
	if !errors.Is(pubErr, pki.ErrKeyNotFound) {
		return nil, nil, pubErr
	}

	priv, err = c.PKI.LoadPrivate(path, prompt)
	if err != nil {
		return nil, nil, err
	}
	blob, err := priv.PublicKeyBlob()
	if err != nil {
		return nil, nil, err
	}
	if writeErr := c.PKI.WritePublic(path+".pub", priv.Algorithm(), blob); writeErr != nil {
		c.log().Warn("client: could not persist derived public key", logger.String("path", path+".pub"), logger.Error(writeErr))
	}
	return priv, priv, nil
}

// defaultIdentityFiles globs ~/.ssh/id_* for the auto driver's default
// identity list when the session carries none explicitly, mirroring
// the common SSH client convention. The ".pub" half of each pair is
// excluded; loadIdentity derives it back from the private key when
// missing. A home directory lookup failure or an empty glob yields an
// empty list, not an error — the caller simply has no default keys.
func defaultIdentityFiles() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(home, ".ssh", "id_*"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.HasSuffix(m, ".pub") {
			continue
		}
		files = append(files, m)
	}
	return files
}
