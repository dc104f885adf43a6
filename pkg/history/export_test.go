package history

var Fixture = fixture
