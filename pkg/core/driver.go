package core

// Driver identifies which SQL dialect handles a connection.
type Driver string

// Supported SQL drivers.
const (
	DriverPostgres  Driver = "postgres"
	DriverMySQL     Driver = "mysql"
	DriverSQLite    Driver = "sqlite"
	DriverSQLServer Driver = "sqlserver"
	DriverOracle    Driver = "oracle"
	DriverRedis     Driver = "redis"
)

// Drivers returns all known drivers in declaration order.
func Drivers() []Driver {
	return []Driver{
		DriverPostgres,
		DriverMySQL,
		DriverSQLite,
		DriverSQLServer,
		DriverOracle,
		DriverRedis,
	}
}

// Valid reports whether d names a known driver.
func (d Driver) Valid() bool {
	switch d {
	case DriverPostgres, DriverMySQL, DriverSQLite, DriverSQLServer, DriverOracle, DriverRedis:
		return true
	}
	return false
}

// String returns the driver name.
func (d Driver) String() string {
	return string(d)
}

// Provider identifies an object storage backend.
type Provider string

// Supported storage providers.
const (
	ProviderS3    Provider = "s3"
	ProviderAzure Provider = "azure"
)

// Providers returns all known storage providers.
func Providers() []Provider {
	return []Provider{ProviderS3, ProviderAzure}
}

// Valid reports whether p names a known provider.
func (p Provider) Valid() bool {
	return p == ProviderS3 || p == ProviderAzure
}

// String returns the provider name.
func (p Provider) String() string {
	return string(p)
}
