package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
)

// SecretManager resolves the secrets the room snapshot references by
// name, currently just the security arming-code hash. The bcrypt hash
// lives in Vault so the rooms file can be checked in without it.
type SecretManager struct {
	client *api.Client
	mount  string
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &SecretManager{client: client, mount: "secret/data/casa"}, nil
}

// ArmingCodeHash reads the bcrypt hash of the spoken disarm code.
func (sm *SecretManager) ArmingCodeHash(ctx context.Context) (string, error) {
	secret, err := sm.client.Logical().ReadWithContext(ctx, sm.mount+"/security")
	if err != nil {
		return "", err
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no security secret at %s", sm.mount)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("malformed security secret")
	}
	hash, ok := data["arming_code_hash"].(string)
	if !ok {
		return "", fmt.Errorf("arming_code_hash missing from security secret")
	}
	return hash, nil
}
