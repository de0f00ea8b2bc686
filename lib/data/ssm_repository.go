package data

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/sirupsen/logrus"
)

// SSMRepository reads configuration parameters from Parameter Store
type SSMRepository interface {
	GetParameters(ctx context.Context) (map[string]string, error)
}

type SSMClientInterface interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// SSMDao reads every parameter below Path, decrypting SecureStrings.
// The result is keyed by full parameter name.
type SSMDao struct {
	SSM    SSMClientInterface
	Path   string
	Logger *logrus.Logger
}

func (dao *SSMDao) GetParameters(ctx context.Context) (map[string]string, error) {
	params := map[string]string{}
	paginator := ssm.NewGetParametersByPathPaginator(dao.SSM, &ssm.GetParametersByPathInput{
		Path:           aws.String(dao.Path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	pages := 0
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			dao.Logger.WithFields(logrus.Fields{
				"operation": "GetParameters",
				"path":      dao.Path,
				"error":     err.Error(),
			}).Error("Failed to read SSM parameters")
			return nil, fmt.Errorf("failed to read parameters below %s: %w", dao.Path, err)
		}
		pages++

		for _, param := range output.Parameters {
			if param.Name == nil || param.Value == nil {
				continue
			}
			params[*param.Name] = *param.Value
		}
	}

	dao.Logger.WithFields(logrus.Fields{
		"operation":    "GetParameters",
		"path":         dao.Path,
		"pages":        pages,
		"params_count": len(params),
	}).Debug("Retrieved SSM parameters")

	return params, nil
}
